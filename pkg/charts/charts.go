package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"dnsperf-analyzer.io/pkg/dnsperf"
)

const histogramBins = 20

var (
	green  = color.RGBA{46, 204, 113, 255}
	red    = color.RGBA{231, 76, 60, 255}
	orange = color.RGBA{243, 156, 18, 255}
	purple = color.RGBA{142, 68, 173, 255}
	blue   = color.RGBA{52, 152, 219, 255}
	violet = color.RGBA{155, 89, 182, 255}
	carrot = color.RGBA{230, 126, 34, 255}
	navy   = color.RGBA{52, 73, 94, 255}
	teal   = color.RGBA{26, 188, 156, 255}
)

var responseCodeColors = map[string]color.Color{
	dnsperf.NoError:  color.RGBA{39, 174, 96, 255},
	dnsperf.NXDomain: orange,
	dnsperf.ServFail: red,
	dnsperf.Refused:  purple,
}

type panel struct {
	name string
	make func(m dnsperf.MetricsRecord) (*plot.Plot, error)
}

// Dashboard layout, two rows of three
var panels = []panel{
	{"success", successPlot},
	{"response_codes", responseCodesPlot},
	{"latency", latencyPlot},
	{"qps", qpsPlot},
	{"packet_size", packetSizePlot},
	{"latency_histogram", histogramPlot},
}

// Render writes a dashboard of every chart to <dir>/<prefix>.png and each chart on its own
// to <dir>/<prefix>_<chart>.png. It returns the written paths, dashboard first
func Render(dir, prefix string, m dnsperf.MetricsRecord) ([]string, error) {
	const rows, cols = 2, 3
	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
	}
	paths := []string{filepath.Join(dir, prefix+".png")}
	for i, pn := range panels {
		p, err := pn.make(m)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s chart: %w", pn.name, err)
		}
		grid[i/cols][i%cols] = p
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, pn.name))
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	if err := saveDashboard(paths[0], grid); err != nil {
		return nil, err
	}
	return paths, nil
}

func saveDashboard(path string, grid [][]*plot.Plot) error {
	img := vgimg.New(18*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      len(grid[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i, p := range grid[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// bars adds one bar per value so each gets its own color, with the value printed above it
func bars(p *plot.Plot, labels []string, values []float64, colors []color.Color, format string) error {
	if len(values) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(values))
	texts := make([]string, len(values))
	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(40))
		if err != nil {
			return err
		}
		bar.XMin = float64(i)
		bar.Color = colors[i%len(colors)]
		bar.LineStyle.Width = 0
		p.Add(bar)
		xys[i] = plotter.XY{X: float64(i), Y: v}
		texts[i] = fmt.Sprintf(format, v)
	}
	p.NominalX(labels...)
	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return err
	}
	p.Add(lbls)
	p.Y.Min = 0
	return nil
}

func successPlot(m dnsperf.MetricsRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Query Success vs Loss Rate"
	p.Y.Label.Text = "% of queries sent"
	err := bars(p, []string{"Success", "Lost"},
		[]float64{m.Rates.SuccessRatePct, m.Rates.LossRatePct},
		[]color.Color{green, red}, "%.1f%%")
	return p, err
}

// Codes that never occurred are left out
func responseCodesPlot(m dnsperf.MetricsRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Response Codes Distribution"
	p.Y.Label.Text = "Responses"
	var labels []string
	var values []float64
	var colors []color.Color
	for _, code := range dnsperf.ResponseCodes {
		if n := m.ResponseCodes[code]; n > 0 {
			labels = append(labels, code)
			values = append(values, float64(n))
			colors = append(colors, responseCodeColors[code])
		}
	}
	return p, bars(p, labels, values, colors, "%.0f")
}

func latencyPlot(m dnsperf.MetricsRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = "Latency (ms)"
	labels := []string{"Minimum", "Average", "Maximum"}
	values := []float64{m.Latency.Minimum, m.Latency.Average, m.Latency.Maximum}
	colors := []color.Color{blue, violet, carrot}
	p.Title.Text = "Latency Metrics (ms)"
	if s := m.PercentileStats; s != nil {
		p.Title.Text = "Latency Distribution (ms)"
		labels = []string{"Min", "P50", "Avg", "P95", "P99", "Max"}
		values = []float64{m.Latency.Minimum, s.P50, m.Latency.Average, s.P95, s.P99, m.Latency.Maximum}
		colors = []color.Color{blue, green, violet, orange, red, carrot}
	}
	for i := range values {
		values[i] *= 1000
	}
	return p, bars(p, labels, values, colors, "%.1fms")
}

// Target QPS is only known when the capture echoed the -Q flag
func qpsPlot(m dnsperf.MetricsRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "QPS: Target vs Achieved"
	p.Y.Label.Text = "Queries per Second"
	target, err := strconv.ParseFloat(m.TestConfig[dnsperf.ConfigTargetQPS], 64)
	if err != nil {
		target = 0
	}
	return p, bars(p, []string{"Target QPS", "Achieved QPS"},
		[]float64{target, m.AchievedQPS}, []color.Color{navy, teal}, "%.1f")
}

func packetSizePlot(m dnsperf.MetricsRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Packet Size: Request vs Response"
	p.Y.Label.Text = "Packet Size (bytes)"
	return p, bars(p, []string{"Request", "Response"},
		[]float64{float64(m.PacketSizes.RequestBytes), float64(m.PacketSizes.ResponseBytes)},
		[]color.Color{violet, carrot}, "%.0f bytes")
}

func histogramPlot(m dnsperf.MetricsRecord) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Per-query Latency Histogram"
	p.X.Label.Text = "Latency (ms)"
	p.Y.Label.Text = "Queries"
	if len(m.Latencies) == 0 {
		return p, nil
	}
	edges, counts := histogram(m.Latencies, histogramBins)
	bar, err := plotter.NewBarChart(counts, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bar.Color = blue
	bar.LineStyle.Width = 0
	p.Add(bar)
	labels := make([]string, len(counts))
	for i := 0; i < len(labels); i += 5 {
		labels[i] = fmt.Sprintf("%.1f", edges[i])
	}
	p.NominalX(labels...)
	return p, nil
}

// histogram bins samples (seconds) into nbins equal-width bins in milliseconds.
// It returns the lower edge of each bin and the bin counts
func histogram(samples []float64, nbins int) ([]float64, plotter.Values) {
	ms := make([]float64, len(samples))
	for i, s := range samples {
		ms[i] = s * 1000
	}
	lo, hi := stats.Sample{Xs: ms}.Bounds()
	if hi <= lo {
		hi = lo + 1
	}
	hist := stats.NewLinearHist(lo, hi, nbins)
	for _, x := range ms {
		hist.Add(x)
	}
	under, counts, over := hist.Counts()
	values := make(plotter.Values, len(counts))
	edges := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
		edges[i] = hist.BinToValue(float64(i))
	}
	// samples equal to the upper bound land past the last bin
	values[0] += float64(under)
	values[len(values)-1] += float64(over)
	return edges, values
}
