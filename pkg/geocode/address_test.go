package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CanonicalExample(t *testing.T) {
	na := Normalize(AddressParts{
		AddressLine: "Plot 12",
		Tehsil:      "Raipur",
		District:    "Durg",
		StateCode:   "CG",
	})
	assert.Equal(t, "Plot 12, Tehsil Raipur, District Durg, Chhattisgarh, India", na.Text)
	assert.Equal(t, []string{"address_line", "tehsil", "district", "state", "country"}, na.Used)
	assert.Equal(t, []string{"locality", "pincode"}, na.Missing)
	assert.False(t, na.LowConfidence)
}

func TestNormalize_FullOrder(t *testing.T) {
	na := Normalize(AddressParts{
		Country:     "India",
		Pincode:     "491001",
		State:       "Chhattisgarh",
		District:    "Durg",
		Tehsil:      "Patan",
		Locality:    "Civil Lines",
		AddressLine: "House 4",
	})
	assert.Equal(t, "House 4, Civil Lines, Tehsil Patan, District Durg, Chhattisgarh, 491001, India", na.Text)
	assert.Empty(t, na.Missing)
}

func TestNormalize_AbbreviationExpansion(t *testing.T) {
	tests := []struct {
		name     string
		parts    AddressParts
		expected string
	}{
		{"tah dot", AddressParts{Tehsil: "Tah. Raipur", District: "Durg"}, "Tehsil Raipur, District Durg, India"},
		{"tahsildar beats tahsil", AddressParts{Tehsil: "Tahsildar Raipur", District: "Durg"}, "Tehsil Raipur, District Durg, India"},
		{"tehsil already labelled", AddressParts{Tehsil: "Tehsil Raipur", District: "District Durg"}, "Tehsil Raipur, District Durg, India"},
		{"distt dot", AddressParts{Tehsil: "Raipur", District: "Distt. Durg"}, "Tehsil Raipur, District Durg, India"},
		{"dist no space", AddressParts{Tehsil: "Raipur", District: "Dist.Durg"}, "Tehsil Raipur, District Durg, India"},
		{"dist bare", AddressParts{Tehsil: "Raipur", District: "dist Durg"}, "Tehsil Raipur, District Durg, India"},
		{"word starting with prefix", AddressParts{Tehsil: "Tehri", District: "Districtpur"}, "Tehsil Tehri, District Districtpur, India"},
		{"address line prefix", AddressParts{AddressLine: "Dist. Durg", Tehsil: "Patan"}, "District Durg, Tehsil Patan, India"},
		{"prefix only is empty", AddressParts{Tehsil: "Tahsil", District: "Durg", Locality: "Bhilai"}, "Bhilai, District Durg, India"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.parts).Text)
		})
	}
}

func TestNormalize_CollapsesWhitespaceAndCommas(t *testing.T) {
	na := Normalize(AddressParts{
		AddressLine: "  Plot   12 ,, Sector\t4 ,",
		Locality:    "Bhilai",
		District:    "Durg",
	})
	assert.Equal(t, "Plot 12, Sector 4, Bhilai, District Durg, India", na.Text)
}

func TestNormalize_FullWidthFolded(t *testing.T) {
	na := Normalize(AddressParts{AddressLine: "Ｐｌｏｔ １２", Locality: "Bhilai", District: "Durg"})
	assert.Equal(t, "Plot 12, Bhilai, District Durg, India", na.Text)
}

func TestNormalize_StateResolution(t *testing.T) {
	explicit := Normalize(AddressParts{Locality: "Indore", State: "Madhya Pradesh", StateCode: "CG"})
	assert.Equal(t, "Indore, Madhya Pradesh, India", explicit.Text)

	fromCode := Normalize(AddressParts{Locality: "Indore", StateCode: "mp"})
	assert.Equal(t, "Indore, Madhya Pradesh, India", fromCode.Text)

	unknown := Normalize(AddressParts{Locality: "Indore", StateCode: "ZZ"})
	assert.Equal(t, "Indore, India", unknown.Text)
	assert.Contains(t, unknown.Missing, ComponentState)
}

func TestNormalize_CountryOverride(t *testing.T) {
	na := Normalize(AddressParts{Locality: "Kathmandu", Country: "Nepal"})
	assert.Equal(t, "Kathmandu, Nepal", na.Text)
}

func TestNormalize_LowConfidence(t *testing.T) {
	tests := []struct {
		name  string
		parts AddressParts
		low   bool
	}{
		{"two components", AddressParts{District: "Durg", StateCode: "CG"}, true},
		{"district without local part", AddressParts{District: "Durg", StateCode: "CG", Pincode: "491001"}, true},
		{"district with locality", AddressParts{Locality: "Civil Lines", District: "Durg", StateCode: "CG"}, false},
		{"three without district", AddressParts{AddressLine: "Plot 3", Locality: "Bhilai", Pincode: "490001"}, false},
		{"country does not count", AddressParts{Locality: "Bhilai", Pincode: "490001", Country: "India"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.low, Normalize(tt.parts).LowConfidence)
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	na := Normalize(AddressParts{Country: "India"})
	assert.Empty(t, na.Text)
	assert.True(t, na.LowConfidence)
	assert.True(t, AddressParts{Country: "India"}.IsEmpty())
}

func TestAdminPrefixes_LongestFirst(t *testing.T) {
	require.NotEmpty(t, adminPrefixes)
	for i := 1; i < len(adminPrefixes); i++ {
		assert.GreaterOrEqual(t, len(adminPrefixes[i-1].prefix), len(adminPrefixes[i].prefix))
	}
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "Chhattisgarh", StateName("CG"))
	assert.Equal(t, "Chhattisgarh", StateName(" cg "))
	assert.Equal(t, "", StateName("XX"))
}
