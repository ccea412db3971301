package world

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Weather is the condition for one day.
type Weather string

const (
	WeatherClear    Weather = "clear"
	WeatherCloudy   Weather = "cloudy"
	WeatherRain     Weather = "rain"
	WeatherStorm    Weather = "thunderstorm"
	WeatherSnow     Weather = "snow"
	WeatherBlizzard Weather = "blizzard"
	WeatherHot      Weather = "very hot"
)

// Severity is how hard the weather is on the party: 0 mild .. 3 brutal.
func (w Weather) Severity() int {
	switch w {
	case WeatherRain, WeatherHot:
		return 1
	case WeatherStorm, WeatherSnow:
		return 2
	case WeatherBlizzard:
		return 3
	default:
		return 0
	}
}

// MonthNorm is the average weather of one month.
type MonthNorm struct {
	TempF    float64
	Humidity float64 // 0..1
	Rainfall float64 // chance of precipitation, 0..1
}

// ClimateProfile is a named set of twelve monthly norms, January first.
type ClimateProfile struct {
	Name   string
	Months [12]MonthNorm
}

// Climate tracks the current weather, temperature and grazing for the oxen.
type Climate struct {
	Profile     ClimateProfile
	TempF       float64
	Humidity    float64
	Weather     Weather
	Grazing     int // 0..100
	StreakDays  int
	lastWeather Weather
}

func NewClimate(p ClimateProfile) *Climate {
	return &Climate{Profile: p, Weather: WeatherClear, Grazing: 100}
}

// Tick rolls the weather for a new day of the given month.
func (c *Climate) Tick(month time.Month, rng *rand.Rand) {
	norm := c.Profile.Months[month-1]
	c.TempF = norm.TempF + (rng.Float64()*2-1)*12
	c.Humidity = clampF(norm.Humidity+(rng.Float64()*2-1)*0.15, 0, 1)

	wet := rng.Float64() < norm.Rainfall
	switch {
	case wet && c.TempF <= 20:
		c.Weather = WeatherBlizzard
	case wet && c.TempF <= 34:
		c.Weather = WeatherSnow
	case wet && c.Humidity > 0.8:
		c.Weather = WeatherStorm
	case wet:
		c.Weather = WeatherRain
	case c.TempF >= 95:
		c.Weather = WeatherHot
	case c.Humidity > 0.6:
		c.Weather = WeatherCloudy
	default:
		c.Weather = WeatherClear
	}
	if c.Weather == c.lastWeather {
		c.StreakDays++
	} else {
		c.StreakDays = 1
	}
	c.lastWeather = c.Weather

	switch {
	case c.TempF < 32 || c.Weather == WeatherHot:
		c.Grazing = max(c.Grazing-10, 0)
	case wet:
		c.Grazing = min(c.Grazing+8, 100)
	default:
		c.Grazing = min(c.Grazing+2, 100)
	}
}

func (c *Climate) String() string {
	return fmt.Sprintf("%s, %.0f°F", c.Weather, c.TempF)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
