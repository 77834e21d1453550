// Package config is the render's external collaborator surface (spec.md
// §6): command-line flags via go-arg, with an optional YAML render
// profile loaded first and overlaid by whatever flags were actually
// given, the same "file provides defaults, flags win" shape
// doismellburning-samoyed's tocalls.yaml loading follows for its own
// structured config data.
package config

import (
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v3"

	"fractalrender/internal/errs"
	"fractalrender/internal/plotctx"
)

// Args is the full set of command-line flags. Exactly one of Master or
// Worker may be set; neither set means a local (single-host) render.
type Args struct {
	Config string `arg:"--config" help:"optional YAML render profile; flags override its values"`

	Family    string  `arg:"--family" default:"mandelbrot" help:"mandelbrot or julia"`
	CReal     float64 `arg:"--c-real" default:"-0.8" help:"Julia constant, real part"`
	CImag     float64 `arg:"--c-imag" default:"0.156" help:"Julia constant, imaginary part"`
	MinReal   float64 `arg:"--min-real" default:"-2.0" help:"viewport bottom-left, real part"`
	MinImag   float64 `arg:"--min-imag" default:"-1.25" help:"viewport bottom-left, imaginary part"`
	MaxReal   float64 `arg:"--max-real" default:"0.5" help:"viewport top-right, real part"`
	MaxImag   float64 `arg:"--max-imag" default:"1.25" help:"viewport top-right, imaginary part"`
	Width     int     `arg:"--width" default:"640" help:"image width in pixels"`
	Height    int     `arg:"--height" default:"480" help:"image height in pixels"`
	Iter      uint64  `arg:"--iter" default:"256" help:"iteration cap per pixel"`
	Scheme    string  `arg:"--scheme" default:"all" help:"one of: all, all_vibrant, black_white, white_black, greyscale, red_white, fire, red_hot, matrix, ascii"`
	Precision string  `arg:"--precision" default:"standard" help:"standard, extended, or arbitrary"`
	MPBits    uint    `arg:"--mp-bits" default:"128" help:"significand width in bits, used only when --precision=arbitrary"`

	Out     string `arg:"--out" help:"output file path; empty means stdout"`
	Budget  uint64 `arg:"--budget" default:"16777216" help:"memory budget in bytes for resident image rows"`
	Workers int    `arg:"--workers" default:"1" help:"goroutines per band (local render) or per row (worker agent)"`

	Master []string `arg:"--master" help:"run as the LAN Dispatcher, dialling these worker addresses (host:port)"`
	Worker string   `arg:"--worker" help:"run as a Worker Agent, listening on this address (host:port)"`

	Verbose bool `arg:"-v,--verbose" help:"enable debug-level logging"`
}

// fileProfile is the subset of Args a YAML render profile may set. A flag
// the user actually typed on the command line always wins over the
// profile; Parse tracks which flag names appeared in argv itself, since
// go-arg has already applied its own `default:"..."` tag values to every
// unset field by the time loadProfile runs and so cannot distinguish
// "user passed the default value explicitly" from "flag omitted".
type fileProfile struct {
	Family    string  `yaml:"family"`
	CReal     float64 `yaml:"c_real"`
	CImag     float64 `yaml:"c_imag"`
	MinReal   float64 `yaml:"min_real"`
	MinImag   float64 `yaml:"min_imag"`
	MaxReal   float64 `yaml:"max_real"`
	MaxImag   float64 `yaml:"max_imag"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Iter      uint64  `yaml:"iter"`
	Scheme    string  `yaml:"scheme"`
	Precision string  `yaml:"precision"`
}

// Parse parses os.Args into an Args, applying a YAML profile named by
// --config (if any) before returning. argv is the raw argument list
// (excluding the program name), matching arg.MustParse's own convention
// of operating on os.Args[1:] when argv is nil.
func Parse(argv []string) (*Args, error) {
	a := &Args{}
	p, err := arg.NewParser(arg.Config{}, a)
	if err != nil {
		return nil, err
	}
	if argv == nil {
		argv = os.Args[1:]
	}
	if err := p.Parse(argv); err != nil {
		return nil, err
	}

	if a.Config != "" {
		if err := a.loadProfile(a.Config, argv); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// argvHasFlag reports whether flag (e.g. "--width") appears in argv,
// either as its own token or as "--width=...".
func argvHasFlag(argv []string, flag string) bool {
	for _, tok := range argv {
		if tok == flag || strings.HasPrefix(tok, flag+"=") {
			return true
		}
	}
	return false
}

// loadProfile overlays a YAML render profile's fields onto whichever
// fields argv did not set explicitly.
func (a *Args) loadProfile(path string, argv []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.FileOpen, "could not read config profile", err)
	}
	var prof fileProfile
	if err := yaml.Unmarshal(data, &prof); err != nil {
		return errs.Wrap(errs.ConfigOutOfRange, "malformed config profile", err)
	}

	set := func(flag string, apply func()) {
		if !argvHasFlag(argv, flag) {
			apply()
		}
	}

	if prof.Family != "" {
		set("--family", func() { a.Family = prof.Family })
	}
	if prof.CReal != 0 {
		set("--c-real", func() { a.CReal = prof.CReal })
	}
	if prof.CImag != 0 {
		set("--c-imag", func() { a.CImag = prof.CImag })
	}
	if prof.MinReal != 0 {
		set("--min-real", func() { a.MinReal = prof.MinReal })
	}
	if prof.MinImag != 0 {
		set("--min-imag", func() { a.MinImag = prof.MinImag })
	}
	if prof.MaxReal != 0 {
		set("--max-real", func() { a.MaxReal = prof.MaxReal })
	}
	if prof.MaxImag != 0 {
		set("--max-imag", func() { a.MaxImag = prof.MaxImag })
	}
	if prof.Width != 0 {
		set("--width", func() { a.Width = prof.Width })
	}
	if prof.Height != 0 {
		set("--height", func() { a.Height = prof.Height })
	}
	if prof.Iter != 0 {
		set("--iter", func() { a.Iter = prof.Iter })
	}
	if prof.Scheme != "" {
		set("--scheme", func() { a.Scheme = prof.Scheme })
	}
	if prof.Precision != "" {
		set("--precision", func() { a.Precision = prof.Precision })
	}
	return nil
}

var familyByName = map[string]plotctx.Family{
	"mandelbrot": plotctx.Mandelbrot,
	"julia":      plotctx.Julia,
}

var schemeByName = map[string]plotctx.SchemeKind{
	"all":         plotctx.SchemeAll,
	"all_vibrant": plotctx.SchemeAllVibrant,
	"black_white": plotctx.SchemeBlackWhite,
	"white_black": plotctx.SchemeWhiteBlack,
	"greyscale":   plotctx.SchemeGreyscale,
	"red_white":   plotctx.SchemeRedWhite,
	"fire":        plotctx.SchemeFire,
	"red_hot":     plotctx.SchemeRedHot,
	"matrix":      plotctx.SchemeMatrix,
	"ascii":       plotctx.SchemeASCII,
}

var precisionByName = map[string]plotctx.Precision{
	"standard":  plotctx.Standard,
	"extended":  plotctx.Extended,
	"arbitrary": plotctx.Arbitrary,
}

// PlotContext builds and finalizes a plotctx.PlotContext from a, returning
// a CONFIG_OUT_OF_RANGE error for an unrecognised family/scheme/precision
// name or any field Validate rejects.
func (a *Args) PlotContext() (*plotctx.PlotContext, error) {
	fam, ok := familyByName[a.Family]
	if !ok {
		return nil, errs.OutOfRange("family", "must be mandelbrot or julia")
	}
	scheme, ok := schemeByName[a.Scheme]
	if !ok {
		return nil, errs.OutOfRange("scheme", "unrecognised colour scheme")
	}
	prec, ok := precisionByName[a.Precision]
	if !ok {
		return nil, errs.OutOfRange("precision", "must be standard, extended, or arbitrary")
	}

	pctx := &plotctx.PlotContext{
		Family:       fam,
		C:            complex(a.CReal, a.CImag),
		Min:          complex(a.MinReal, a.MinImag),
		Max:          complex(a.MaxReal, a.MaxImag),
		Width:        a.Width,
		Height:       a.Height,
		IterationCap: a.Iter,
		Scheme:       scheme,
		Precision:    prec,
		MPBits:       a.MPBits,
	}
	if err := pctx.Finalize(); err != nil {
		return nil, err
	}
	return pctx, nil
}

// IsMaster reports whether these args select the LAN Dispatcher role.
func (a *Args) IsMaster() bool { return len(a.Master) > 0 }

// IsWorker reports whether these args select the Worker Agent role.
func (a *Args) IsWorker() bool { return a.Worker != "" }
