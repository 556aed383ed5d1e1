package page

import (
	"strings"
	"testing"
)

func TestCleanHexColorNormalizes(t *testing.T) {
	got, err := CleanHexColor("ff0000")
	if err != nil {
		t.Fatalf("CleanHexColor: %v", err)
	}
	if got != "#FF0000" {
		t.Fatalf("expected #FF0000, got %s", got)
	}

	got, err = CleanHexColor("  #3b82f6 ")
	if err != nil {
		t.Fatalf("CleanHexColor: %v", err)
	}
	if got != "#3B82F6" {
		t.Fatalf("expected #3B82F6, got %s", got)
	}
}

func TestCleanHexColorRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"not-a-color", "#12345", "#1234567", "#GGGGGG", "rgb(1,2,3)"} {
		if _, err := CleanHexColor(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestCleanHexColorEmptyMeansUnset(t *testing.T) {
	got, err := CleanHexColor("")
	if err != nil {
		t.Fatalf("CleanHexColor: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}

func TestBrandingNormalizeNamesBadField(t *testing.T) {
	_, err := Branding{ButtonColor: "#12"}.Normalize()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.HasPrefix(got, "buttonColor") {
		t.Fatalf("error should name the field, got %q", got)
	}
}

func TestEffectiveColorsCustomBeatsBranding(t *testing.T) {
	branding := Branding{PrimaryColor: "#111111", HeadingColor: "#222222"}
	colors := EffectiveColors(branding, map[string]string{"headingColor": "#ABCDEF"})
	if colors.Heading != "#ABCDEF" {
		t.Fatalf("custom override should win, got %s", colors.Heading)
	}
	if colors.Primary != "#111111" {
		t.Fatalf("primary should come from branding, got %s", colors.Primary)
	}
}

func TestEffectiveColorsHeadingFallsBackToPrimary(t *testing.T) {
	branding := Branding{PrimaryColor: "#111111"}
	colors := EffectiveColors(branding, nil)
	if colors.Heading != "#111111" {
		t.Fatalf("heading should fall back to primary, got %s", colors.Heading)
	}
}

func TestEffectiveColorsLiteralDefaults(t *testing.T) {
	colors := EffectiveColors(Branding{}, nil)
	if colors.Primary != DefaultPrimaryColor {
		t.Fatalf("expected %s, got %s", DefaultPrimaryColor, colors.Primary)
	}
	if colors.Background != DefaultBackgroundColor {
		t.Fatalf("expected %s, got %s", DefaultBackgroundColor, colors.Background)
	}
	if colors.Heading != DefaultHeadingColor {
		t.Fatalf("expected %s, got %s", DefaultHeadingColor, colors.Heading)
	}
}

func TestEffectiveColorsIgnoresInvalidCustom(t *testing.T) {
	branding := Branding{TextColor: "#1F2937"}
	colors := EffectiveColors(branding, map[string]string{"textColor": "nope"})
	if colors.Text != "#1F2937" {
		t.Fatalf("invalid custom value should be ignored, got %s", colors.Text)
	}
}

func TestBrandingMerge(t *testing.T) {
	base := DefaultBranding()
	merged := base.Merge(Branding{PrimaryColor: "#000000"})
	if merged.PrimaryColor != "#000000" {
		t.Fatalf("override not applied: %s", merged.PrimaryColor)
	}
	if merged.SecondaryColor != DefaultSecondaryColor {
		t.Fatalf("unset override should keep base: %s", merged.SecondaryColor)
	}
}
