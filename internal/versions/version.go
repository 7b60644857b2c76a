package versions

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/temirov/gamerelease/internal/failures"
)

const (
	versionPatternConstant              = `^(\d+)\.(\d+)\.(\d+)$`
	componentSeparatorConstant          = "."
	zeroComponentConstant               = "0"
	zeroVersionConstant                 = "0.0.0"
	semverPrefixConstant                = "v"
	parseErrorTemplateConstant          = "%q: %s"
	emptyVersionMessageConstant         = "version must not be empty"
	malformedVersionMessageConstant     = "version must match MAJOR.MINOR.PATCH with non-negative integer components"
	versionComponentCountConstant       = 3
	versionPatternSubmatchCountConstant = versionComponentCountConstant + 1
)

var versionPattern = regexp.MustCompile(versionPatternConstant)

// Version is a parsed MAJOR.MINOR.PATCH release version. Components keep
// their decimal digits, so arbitrarily large numbers are accepted.
type Version struct {
	canonical string
	text      string
}

// ParseError reports a string that is not a valid release version.
type ParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// FailureKind classifies parse failures as validation errors.
func (parseError ParseError) FailureKind() failures.Kind {
	return failures.KindValidation
}

// Parse converts text into a Version. Only three dot-separated non-negative
// integers are accepted; prefixes, pre-release, and build metadata are rejected.
func Parse(text string) (Version, error) {
	if len(text) == 0 {
		return Version{}, ParseError{Input: text, Message: emptyVersionMessageConstant}
	}

	submatches := versionPattern.FindStringSubmatch(text)
	if len(submatches) != versionPatternSubmatchCountConstant {
		return Version{}, ParseError{Input: text, Message: malformedVersionMessageConstant}
	}

	components := make([]string, 0, versionComponentCountConstant)
	for _, componentText := range submatches[1:] {
		components = append(components, trimLeadingZeros(componentText))
	}

	return Version{canonical: strings.Join(components, componentSeparatorConstant), text: text}, nil
}

func trimLeadingZeros(componentText string) string {
	trimmed := strings.TrimLeft(componentText, zeroComponentConstant)
	if len(trimmed) == 0 {
		return zeroComponentConstant
	}
	return trimmed
}

// MustParse parses text and panics when it is not a valid version.
func MustParse(text string) Version {
	version, parseError := Parse(text)
	if parseError != nil {
		panic(parseError)
	}
	return version
}

// String returns the canonical MAJOR.MINOR.PATCH form.
func (version Version) String() string {
	if len(version.canonical) == 0 {
		return zeroVersionConstant
	}
	return version.canonical
}

// Text returns the spelling the version was parsed from, which is also the
// release directory name. Versions built without Parse fall back to String.
func (version Version) Text() string {
	if len(version.text) == 0 {
		return version.String()
	}
	return version.text
}

// MarshalText encodes the version using its directory spelling.
func (version Version) MarshalText() ([]byte, error) {
	return []byte(version.Text()), nil
}

// Compare returns -1, 0, or +1 comparing the numeric components of two versions.
func Compare(left Version, right Version) int {
	return semver.Compare(semverPrefixConstant+left.String(), semverPrefixConstant+right.String())
}

// Equal reports whether two versions are numerically equal regardless of spelling.
func Equal(left Version, right Version) bool {
	return Compare(left, right) == 0
}

// Less reports whether left orders before right.
func Less(left Version, right Version) bool {
	return Compare(left, right) < 0
}

// Latest returns the maximum version, or false when no versions are provided.
func Latest(candidates []Version) (Version, bool) {
	if len(candidates) == 0 {
		return Version{}, false
	}

	latest := candidates[0]
	for _, candidate := range candidates[1:] {
		if Less(latest, candidate) {
			latest = candidate
		}
	}
	return latest, true
}

// SortDescending orders versions latest first. Numerically equal versions
// are ordered by their spelling so the result is stable across runs.
func SortDescending(candidates []Version) {
	sort.SliceStable(candidates, func(leftIndex int, rightIndex int) bool {
		comparison := Compare(candidates[leftIndex], candidates[rightIndex])
		if comparison != 0 {
			return comparison > 0
		}
		return strings.Compare(candidates[leftIndex].Text(), candidates[rightIndex].Text()) > 0
	})
}

// ParseAll parses every name, returning valid versions in input order and the
// parse failures for the rest.
func ParseAll(names []string) ([]Version, []ParseError) {
	parsed := make([]Version, 0, len(names))
	var invalid []ParseError

	for _, name := range names {
		version, parseError := Parse(name)
		if parseError != nil {
			invalid = append(invalid, parseError.(ParseError))
			continue
		}
		parsed = append(parsed, version)
	}

	return parsed, invalid
}

// FindEqual returns the first candidate numerically equal to target.
func FindEqual(candidates []Version, target Version) (Version, bool) {
	for _, candidate := range candidates {
		if Equal(candidate, target) {
			return candidate, true
		}
	}
	return Version{}, false
}
