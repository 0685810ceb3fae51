package plugins

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor.patch version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "1", "1.2" or "1.2.3", with an optional "v" prefix.
// Missing parts are zero.
func ParseVersion(v string) (*Version, error) {
	if v == "" {
		return nil, fmt.Errorf("version string is empty")
	}
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) > 3 {
		return nil, fmt.Errorf("invalid version format: %s (expected X.Y.Z)", v)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version component %q in %s", p, v)
		}
		nums[i] = n
	}
	return &Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 as v is older than, equal to or newer than
// other.
func (v *Version) Compare(other *Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// IsCompatibleWith reports whether a host at v can run a handler that
// requires required: same major version, minor at least as new.
func (v *Version) IsCompatibleWith(required *Version) bool {
	return v.Major == required.Major && v.Minor >= required.Minor
}
