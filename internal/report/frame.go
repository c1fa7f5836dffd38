package report

import (
	"math"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

const (
	colAirport       = "airportDep"
	colDelay         = "delay"
	colPrecipitation = "precipitation"
	colCloudCover    = "cloud_cover"
	colWind10m       = "wind_speed_10m"
	colWind100m      = "wind_speed_100m"
)

// frame is a flight dataframe with one row per flight; missing numbers are NaN.
type frame struct {
	df dataframe.DataFrame
}

func newFrame(flights []domain.Flight) (frame, error) {
	n := len(flights)
	airports := make([]string, n)
	delay := make([]float64, n)
	prec := make([]float64, n)
	cloud := make([]float64, n)
	wind10 := make([]float64, n)
	wind100 := make([]float64, n)

	for i, f := range flights {
		airports[i] = f.AirportDep
		if d, ok := f.Delay(); ok {
			delay[i] = d
		} else {
			delay[i] = math.NaN()
		}
		prec[i] = orNaN(f.Precipitation)
		cloud[i] = orNaN(f.CloudCover)
		wind10[i] = orNaN(f.WindSpeed10m)
		wind100[i] = orNaN(f.WindSpeed100m)
	}

	df := dataframe.New(
		series.New(airports, series.String, colAirport),
		series.New(delay, series.Float, colDelay),
		series.New(prec, series.Float, colPrecipitation),
		series.New(cloud, series.Float, colCloudCover),
		series.New(wind10, series.Float, colWind10m),
		series.New(wind100, series.Float, colWind100m),
	)
	return frame{df: df}, df.Err
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func (f frame) filter(col string, cmp series.Comparator, value any) frame {
	if f.df.Nrow() == 0 {
		return f
	}
	return frame{df: f.df.Filter(dataframe.F{Colname: col, Comparator: cmp, Comparando: value})}
}

func (f frame) airport(code string) frame {
	return f.filter(colAirport, series.Eq, code)
}

// above keeps rows whose col is strictly greater than threshold.
func (f frame) above(col string, threshold float64) frame {
	return f.filter(col, series.Greater, threshold)
}

// atOrBelow keeps rows whose col is less than or equal to threshold.
func (f frame) atOrBelow(col string, threshold float64) frame {
	return f.filter(col, series.LessEq, threshold)
}

func (f frame) floats(col string) []float64 {
	if f.df.Nrow() == 0 {
		return nil
	}
	return f.df.Col(col).Float()
}

// meanDelay averages the known delays, NaN when there are none.
func (f frame) meanDelay() float64 {
	var known []float64
	for _, d := range f.floats(colDelay) {
		if !math.IsNaN(d) {
			known = append(known, d)
		}
	}
	if len(known) == 0 {
		return math.NaN()
	}
	return stat.Mean(known, nil)
}

func (f frame) correlations() Correlation {
	delay := f.floats(colDelay)
	return Correlation{
		Precipitation: pearson(delay, f.floats(colPrecipitation)),
		CloudCover:    pearson(delay, f.floats(colCloudCover)),
		WindSpeed10m:  pearson(delay, f.floats(colWind10m)),
		WindSpeed100m: pearson(delay, f.floats(colWind100m)),
	}
}

// pearson correlates x and y over pairwise-complete observations. It returns
// nil with fewer than two pairs or zero variance.
func pearson(x, y []float64) *float64 {
	var xs, ys []float64
	for i := range x {
		if i < len(y) && !math.IsNaN(x[i]) && !math.IsNaN(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	if len(xs) < 2 {
		return nil
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}
