package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sells-group/locality-cli/pkg/geocode"
)

// addAddressFlags registers one flag per AddressParts field.
func addAddressFlags(f *pflag.FlagSet) {
	f.String("address-line", "", "street, plot or building line")
	f.String("locality", "", "locality, village or sector")
	f.String("tehsil", "", "tehsil / taluka")
	f.String("district", "", "district")
	f.String("state", "", "state name")
	f.String("state-code", "", "two-letter state code (e.g. CG, MH)")
	f.String("pincode", "", "postal pincode")
	f.String("country", "", "country (default India)")
}

// addressFromFlags reads the flags registered by addAddressFlags.
func addressFromFlags(cmd *cobra.Command) geocode.AddressParts {
	f := cmd.Flags()
	get := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}
	return geocode.AddressParts{
		AddressLine: get("address-line"),
		Locality:    get("locality"),
		Tehsil:      get("tehsil"),
		District:    get("district"),
		State:       get("state"),
		StateCode:   get("state-code"),
		Pincode:     get("pincode"),
		Country:     get("country"),
	}
}

// addPointFlags registers --lat and --lon.
func addPointFlags(f *pflag.FlagSet) {
	f.Float64("lat", 0, "latitude (WGS 84)")
	f.Float64("lon", 0, "longitude (WGS 84)")
}

// pointFromFlags returns the --lat/--lon pair and whether both were set.
func pointFromFlags(cmd *cobra.Command) (lat, lon float64, ok bool) {
	f := cmd.Flags()
	if !f.Changed("lat") || !f.Changed("lon") {
		return 0, 0, false
	}
	lat, _ = f.GetFloat64("lat")
	lon, _ = f.GetFloat64("lon")
	return lat, lon, true
}
