package report

import (
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/covidpolicy/gammaest/pkg/types"
)

// Metric family names of the textfile export.
const (
	metricRemovalRate  = "gammaest_removal_rate"
	metricObservations = "gammaest_removal_rate_observations"
)

// WriteTextfile writes the estimates to path in the Prometheus text format.
func WriteTextfile(path string, t *types.GammaTable) error {
	return createFile(path, func(f *os.File) error {
		return EncodeTextfile(f, t)
	})
}

// EncodeTextfile writes the estimates to w in the Prometheus text format.
// Each present cell becomes a gauge sample labelled by scope and
// removal_delay; missing cells are left out.
func EncodeTextfile(w io.Writer, t *types.GammaTable) error {
	for _, mf := range metricFamilies(t) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "report: encode %s", mf.GetName())
		}
	}
	return nil
}

func metricFamilies(t *types.GammaTable) []*dto.MetricFamily {
	rate := &dto.MetricFamily{
		Name: proto.String(metricRemovalRate),
		Help: proto.String("Median daily removal rate (gamma) by scope and assumed removal delay in days."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	obs := &dto.MetricFamily{
		Name: proto.String(metricObservations),
		Help: proto.String("Number of daily ratios the removal rate median was taken over."),
		Type: dto.MetricType_GAUGE.Enum(),
	}

	t.Each(func(scope string, delay int, c types.Cell) {
		if c.Missing() {
			return
		}
		labels := []*dto.LabelPair{
			{Name: proto.String("removal_delay"), Value: proto.String(strconv.Itoa(delay))},
			{Name: proto.String("scope"), Value: proto.String(scope)},
		}
		rate.Metric = append(rate.Metric, &dto.Metric{
			Label: labels,
			Gauge: &dto.Gauge{Value: proto.Float64(c.Gamma)},
		})
		obs.Metric = append(obs.Metric, &dto.Metric{
			Label: labels,
			Gauge: &dto.Gauge{Value: proto.Float64(float64(c.Observations))},
		})
	})

	var out []*dto.MetricFamily
	for _, mf := range []*dto.MetricFamily{rate, obs} {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}
