// README: Rate schedule per vehicle class.
package fare

import "swiftcab/internal/types"

type Rate struct {
	Class    string
	BaseFare int64
	PerKm    int64
	PerMin   int64
	MinFare  int64
}

// Currency for every computed fare.
const Currency = "INR"

// DefaultRates covers the supported vehicle classes.
var DefaultRates = []Rate{
	{Class: "auto", BaseFare: 30, PerKm: 10, PerMin: 2, MinFare: 40},
	{Class: "sedan", BaseFare: 50, PerKm: 15, PerMin: 3, MinFare: 70},
	{Class: "suv", BaseFare: 80, PerKm: 20, PerMin: 4, MinFare: 110},
	{Class: "moto", BaseFare: 20, PerKm: 8, PerMin: 1, MinFare: 25},
}

// Table maps vehicle class to the estimated fare for one trip.
type Table map[string]types.Money
