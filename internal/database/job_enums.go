package database

// 职位枚举集合。API 与 worker（CSV 导入）共用同一份校验。
var (
	ValidWorkPolicies     = map[string]bool{"Remote": true, "Hybrid": true, "On-site": true}
	ValidEmploymentTypes  = map[string]bool{"Full time": true, "Part time": true, "Contract": true}
	ValidExperienceLevels = map[string]bool{"Entry": true, "Mid": true, "Senior": true, "Lead": true}
	ValidJobTypes         = map[string]bool{"Permanent": true, "Temporary": true, "Internship": true}
	ValidJobStatuses      = map[string]bool{"active": true, "draft": true, "inactive": true}
)

// 未显式指定时的默认取值。
const (
	DefaultWorkPolicy      = "On-site"
	DefaultEmploymentType  = "Full time"
	DefaultExperienceLevel = "Mid"
	DefaultJobType         = "Permanent"
	DefaultJobStatus       = "draft"
)
