package egis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProperCase(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"COMMONWEALTH AVE", "Commonwealth Ave"},
		{"main street", "Main Street"},
		{"  BEACON  ", "Beacon"},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ProperCase(tc.in), "input %q", tc.in)
	}
}

func TestCleanDescription(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{"strips code prefix", "BR - Brick", "Brick"},
		{"uses last separator", "X - Y - Poured Concrete", "Poured Concrete"},
		{"no separator passes through cased", "slate roof", "Slate Roof"},
		{"abbreviation preserved", "FA - Forced HVAC System", "Forced HVAC System"},
		{"long all caps word is cased", "CLAPBOARD", "Clapboard"},
		{"empty", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanDescription(tc.in))
		})
	}
}

func TestBuildAddress(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
		number   string
		suffix   string
		street   string
		unit     string
		city     string
		zip      string
	}{
		{
			name:   "full address",
			number: "12", suffix: "A", street: "MILK ST", unit: "4", city: "Dorchester", zip: "02124",
			expected: "12-A Milk St Unit 4, Dorchester, 02124",
		},
		{
			name:   "boston shorthand",
			number: "1", street: "CITY HALL SQ", city: "=", zip: "02201",
			expected: "1 City Hall Sq, Boston, 02201",
		},
		{
			name:   "no unit no suffix",
			number: "440", street: "BEACON ST", city: "Boston", zip: "02115",
			expected: "440 Beacon St, Boston, 02115",
		},
		{
			name:   "missing city and zip",
			number: "7", street: "OAK AVE",
			expected: "7 Oak Ave",
		},
		{
			name:     "everything empty",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildAddress(tc.number, tc.suffix, tc.street, tc.unit, tc.city, tc.zip)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestMasterParcelID(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"0401234000_C01", "0401234000"},
		{"0401234000", "0401234000"},
		{"AB12-9", "AB12"},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, MasterParcelID(tc.in), "input %q", tc.in)
	}
}
