package render

import (
	"encoding/json"
	"html"
	"strings"
)

// Document 把页面树包进完整 HTML 文档：SEO 元信息、结构化
// 数据、样式与职位过滤脚本。
func Document(tree *Node, meta MetaTags, postings []map[string]any, organization map[string]any, backgroundColor string) string {
	esc := html.EscapeString
	if backgroundColor == "" {
		backgroundColor = "#F3F4F6"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + esc(meta.Title) + "</title>\n")
	b.WriteString("<meta name=\"description\" content=\"" + esc(meta.Description) + "\">\n")
	b.WriteString("<meta name=\"keywords\" content=\"" + esc(meta.Keywords) + "\">\n")
	b.WriteString("<meta name=\"robots\" content=\"index, follow\">\n")
	b.WriteString("<meta name=\"author\" content=\"" + esc(meta.Title) + "\">\n")

	if meta.Favicon != "" {
		b.WriteString("<link rel=\"icon\" type=\"image/png\" href=\"" + esc(meta.Favicon) + "\">\n")
		b.WriteString("<link rel=\"apple-touch-icon\" href=\"" + esc(meta.Favicon) + "\">\n")
	}
	b.WriteString("<link rel=\"canonical\" href=\"" + esc(meta.Canonical) + "\">\n")

	b.WriteString("<meta property=\"og:title\" content=\"" + esc(meta.Title) + "\">\n")
	b.WriteString("<meta property=\"og:description\" content=\"" + esc(meta.Description) + "\">\n")
	b.WriteString("<meta property=\"og:type\" content=\"website\">\n")
	b.WriteString("<meta property=\"og:url\" content=\"" + esc(meta.Canonical) + "\">\n")
	b.WriteString("<meta property=\"og:site_name\" content=\"" + esc(meta.SiteName) + "\">\n")
	if meta.OGImage != "" {
		b.WriteString("<meta property=\"og:image\" content=\"" + esc(meta.OGImage) + "\">\n")
		b.WriteString("<meta property=\"og:image:alt\" content=\"" + esc(meta.Title) + " Logo\">\n")
	}

	b.WriteString("<meta name=\"twitter:card\" content=\"summary_large_image\">\n")
	b.WriteString("<meta name=\"twitter:title\" content=\"" + esc(meta.Title) + "\">\n")
	b.WriteString("<meta name=\"twitter:description\" content=\"" + esc(meta.Description) + "\">\n")
	if meta.OGImage != "" {
		b.WriteString("<meta name=\"twitter:image\" content=\"" + esc(meta.OGImage) + "\">\n")
		b.WriteString("<meta name=\"twitter:image:alt\" content=\"" + esc(meta.Title) + " Logo\">\n")
	}

	b.WriteString("<meta name=\"theme-color\" content=\"#3B82F6\">\n")
	b.WriteString("<meta name=\"msapplication-TileColor\" content=\"#3B82F6\">\n")

	if len(postings) > 0 {
		if data, err := json.MarshalIndent(postings, "", "  "); err == nil {
			b.WriteString("<script type=\"application/ld+json\">\n")
			b.Write(data)
			b.WriteString("\n</script>\n")
		}
	}

	b.WriteString("<script src=\"https://cdn.tailwindcss.com\"></script>\n")
	b.WriteString("<style>\n")
	b.WriteString(documentStyles(backgroundColor))
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString("<div id=\"root\">")
	b.WriteString(tree.HTML())
	b.WriteString("</div>\n")

	if organization != nil {
		if data, err := json.MarshalIndent(organization, "", "  "); err == nil {
			b.WriteString("<script type=\"application/ld+json\">\n")
			b.Write(data)
			b.WriteString("\n</script>\n")
		}
	}

	b.WriteString("<script>\n")
	b.WriteString(jobFilterScript)
	b.WriteString("</script>\n</body>\n</html>")
	return b.String()
}

func documentStyles(backgroundColor string) string {
	return `.component-wrapper{width:100%;margin:0;padding:0}
.career-page{min-height:100vh;margin:0;padding:0}
body{margin:0;padding:0;background-color:` + backgroundColor + `;overflow-x:hidden}
.hidden{display:none!important}
*{box-sizing:border-box}
.career-page>*{max-width:100vw;overflow-x:hidden}
@media (max-width:768px){
  .job-section .grid{grid-template-columns:1fr;gap:.75rem}
  .job-section .px-6{padding-left:1rem;padding-right:1rem}
  .job-section .py-12{padding-top:2rem;padding-bottom:2rem}
  .job-section .text-3xl{font-size:1.875rem;line-height:2.25rem}
  .job-section .p-6{padding:1rem}
}
@media (max-width:640px){
  .job-section .flex-wrap{flex-direction:column;align-items:stretch}
  .job-section .max-w-md{max-width:100%}
  .job-section select,.job-section input{width:100%;min-width:0}
}
.max-w-6xl{max-width:min(72rem,calc(100vw - 3rem))}
.component-wrapper>div{max-width:100%;overflow-x:hidden}
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
`
}

// jobFilterScript 在浏览器内完成职位的搜索、排序与过滤，
// 无需任何后端往返。
const jobFilterScript = `document.addEventListener('DOMContentLoaded', function() {
  var searchInput = document.getElementById('job-search');
  var sortSelect = document.getElementById('job-sort');
  var filters = {
    department: document.getElementById('filter-department'),
    location: document.getElementById('filter-location'),
    workPolicy: document.getElementById('filter-workPolicy'),
    employmentType: document.getElementById('filter-employmentType'),
    experienceLevel: document.getElementById('filter-experienceLevel')
  };
  var clearFiltersBtn = document.getElementById('clear-filters');
  var jobListings = document.getElementById('job-listings');
  var jobCount = document.getElementById('job-count');

  if (!jobListings) return;

  var allJobs = Array.prototype.slice.call(jobListings.children);
  var filteredJobs = allJobs.slice();

  function getJobData(el) {
    var title = el.querySelector('h3').textContent.toLowerCase();
    var fields = [];
    el.querySelectorAll('span').forEach(function(span) {
      fields.push(span.textContent.trim().toLowerCase());
    });
    return { title: title, fields: fields };
  }

  function matchesFilter(data, select) {
    if (!select || !select.value) return true;
    var wanted = select.value.toLowerCase();
    return data.fields.some(function(f) { return f === wanted; });
  }

  function filterJobs() {
    var term = searchInput ? searchInput.value.toLowerCase() : '';
    filteredJobs = allJobs.filter(function(job) {
      var data = getJobData(job);
      if (term && data.title.indexOf(term) === -1 &&
          !data.fields.some(function(f) { return f.indexOf(term) !== -1; })) {
        return false;
      }
      for (var key in filters) {
        if (!matchesFilter(data, filters[key])) return false;
      }
      return true;
    });
    sortJobs();
  }

  function sortJobs() {
    var sortBy = sortSelect ? sortSelect.value : 'newest';
    filteredJobs.sort(function(a, b) {
      var ia = allJobs.indexOf(a);
      var ib = allJobs.indexOf(b);
      switch (sortBy) {
        case 'title':
          return getJobData(a).title.localeCompare(getJobData(b).title);
        case 'oldest':
          return ib - ia;
        default:
          return ia - ib;
      }
    });
    renderJobs();
  }

  function renderJobs() {
    allJobs.forEach(function(job) { job.classList.add('hidden'); });
    filteredJobs.forEach(function(job) {
      job.classList.remove('hidden');
      jobListings.appendChild(job);
    });

    if (jobCount) {
      jobCount.textContent = 'Showing ' + filteredJobs.length + ' of ' + allJobs.length + ' jobs';
    }

    var noResults = document.getElementById('no-results-message');
    if (filteredJobs.length === 0) {
      if (!noResults) {
        noResults = document.createElement('div');
        noResults.id = 'no-results-message';
        noResults.className = 'text-center py-12';
        noResults.innerHTML = '<p class="text-lg">No jobs match your filters. Try adjusting your search criteria.</p>';
        jobListings.appendChild(noResults);
      }
      noResults.classList.remove('hidden');
    } else if (noResults) {
      noResults.classList.add('hidden');
    }
  }

  function clearFilters() {
    if (searchInput) searchInput.value = '';
    if (sortSelect) sortSelect.value = 'newest';
    for (var key in filters) {
      if (filters[key]) filters[key].value = '';
    }
    filteredJobs = allJobs.slice();
    renderJobs();
  }

  if (searchInput) searchInput.addEventListener('input', filterJobs);
  if (sortSelect) sortSelect.addEventListener('change', filterJobs);
  for (var key in filters) {
    if (filters[key]) filters[key].addEventListener('change', filterJobs);
  }
  if (clearFiltersBtn) clearFiltersBtn.addEventListener('click', clearFilters);

  renderJobs();
});
`

// NotFoundPage 是公共路由的 404 文档。
func NotFoundPage() string {
	return errorPage("404", "Page Not Found", "The careers page you're looking for doesn't exist or hasn't been published yet.")
}

// ServerErrorPage 是公共路由的 500 文档，绝不携带内部细节。
func ServerErrorPage() string {
	return errorPage("500", "Something Went Wrong", "We couldn't load this careers page right now. Please try again later.")
}

func errorPage(code, heading, message string) string {
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>" + esc(code+" - "+heading) + "</title>\n")
	b.WriteString("<meta name=\"robots\" content=\"noindex\">\n")
	b.WriteString("<script src=\"https://cdn.tailwindcss.com\"></script>\n")
	b.WriteString("</head>\n<body class=\"bg-gray-100\">\n")
	b.WriteString("<div class=\"min-h-screen flex items-center justify-center px-6\">\n")
	b.WriteString("<div class=\"text-center\">\n")
	b.WriteString("<h1 class=\"text-6xl font-bold text-gray-300\">" + esc(code) + "</h1>\n")
	b.WriteString("<h2 class=\"mt-4 text-2xl font-semibold text-gray-700\">" + esc(heading) + "</h2>\n")
	b.WriteString("<p class=\"mt-2 text-gray-500\">" + esc(message) + "</p>\n")
	b.WriteString("</div>\n</div>\n</body>\n</html>")
	return b.String()
}
