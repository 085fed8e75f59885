package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/howeyc/gopass"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/sathishktk/tk-custom-metric/client"
	"github.com/sathishktk/tk-custom-metric/config"
	"github.com/sathishktk/tk-custom-metric/influx"
	"github.com/sathishktk/tk-custom-metric/logger"
)

var build = "development"

type commands struct {
	app        *kingpin.Application
	configFile *string
	debug      *bool

	initCommand *kingpin.CmdClause

	createCommand *kingpin.CmdClause

	deleteCommand  *kingpin.CmdClause
	descriptorName *string

	writeCommand *kingpin.CmdClause

	listCommand *kingpin.CmdClause

	exportCommand *kingpin.CmdClause
	askPass       *bool

	// sampler is created on first use and kept for the life of the process.
	sampler *client.Sampler
}

func newCommands() *commands {
	app := kingpin.New("tk-custom-metric", "Demonstrates Monitoring API operations.")
	app.Version(build)

	c := &commands{
		app:        app,
		configFile: app.Flag("config", "An optional settings file (see init).").Short('c').String(),
		debug:      app.Flag("debug", "Log debug messages.").Bool(),
	}

	c.initCommand = app.Command("init", "Output a settings file holding the defaults.")

	c.createCommand = app.Command("create-metric-descriptor", "Create the custom metric descriptor.")

	c.deleteCommand = app.Command("delete-metric-descriptor", "Delete a metric descriptor.")
	c.descriptorName = c.deleteCommand.Flag("metric-descriptor-name", "Metric descriptor to delete").Required().String()

	c.writeCommand = app.Command("write-time-series", "Write one point of the custom metric.")

	c.listCommand = app.Command("list-metric-descriptors", "List the project's metric descriptors.")

	c.exportCommand = app.Command("export-time-series", "Export custom metric time series into Influx.")
	c.askPass = c.exportCommand.Flag("influx-ask-pass", "Prompt for the Influx password.").Bool()

	return c
}

// sink is the part of the influx client used by the exporter.
type sink interface {
	Send(measurement string, records []influx.Record) error
	LastRecordedTime(measurement string, tags map[string]string) (*time.Time, error)
	Close() error
}

// environment holds everything a command touches outside the process.
type environment struct {
	stdout       io.Writer
	lookupEnv    client.LookupEnv
	now          func() time.Time
	random       func() float64
	newService   func(ctx context.Context) (client.Service, error)
	newSink      func(cfg config.InfluxConfig) (sink, error)
	readPassword func() ([]byte, error)
}

func defaultEnvironment() environment {
	return environment{
		stdout:    os.Stdout,
		lookupEnv: os.LookupEnv,
		now:       time.Now,
		newService: func(ctx context.Context) (client.Service, error) {
			svc, err := client.CreateClient(ctx)
			if err != nil {
				return nil, err
			}
			return svc, nil
		},
		newSink: func(cfg config.InfluxConfig) (sink, error) {
			c, err := influx.CreateClient(cfg.Address, cfg.Database, cfg.Username, cfg.Password)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		readPassword: func() ([]byte, error) {
			return gopass.GetPasswdPrompt("Influx password: ", true, os.Stdin, os.Stderr)
		},
	}
}

func (c *commands) run(ctx context.Context, command string, env environment) error {
	logger.Log.SetDebug(*c.debug)

	if command == c.initCommand.FullCommand() {
		config.PrintConfig(env.stdout)
		return nil
	}

	cfg, err := config.Load(*c.configFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	switch command {
	case c.createCommand.FullCommand():
		return c.withProject(ctx, env, func(svc client.Service, project string) error {
			return createMetricDescriptor(ctx, svc, project, cfg.Metric, env.stdout)
		})
	case c.deleteCommand.FullCommand():
		svc, err := env.newService(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		return deleteMetricDescriptor(ctx, svc, *c.descriptorName, env.stdout)
	case c.writeCommand.FullCommand():
		if c.sampler == nil {
			c.sampler = client.NewSampler(cfg.Sample.Min, cfg.Sample.Max, cfg.Sample.Redraw, env.random)
		}
		return c.withProject(ctx, env, func(svc client.Service, project string) error {
			return writeTimeSeries(ctx, svc, project, cfg, c.sampler.Value(), env.now())
		})
	case c.listCommand.FullCommand():
		return c.withProject(ctx, env, func(svc client.Service, project string) error {
			return listMetricDescriptors(ctx, svc, project, env.stdout)
		})
	case c.exportCommand.FullCommand():
		return c.export(ctx, cfg, env)
	}

	return fmt.Errorf("unknown command %v", command)
}

// withProject resolves the project before any client is constructed so a
// missing project never reaches the network.
func (c *commands) withProject(ctx context.Context, env environment, fn func(client.Service, string) error) error {
	project, err := client.ProjectID(env.lookupEnv)
	if err != nil {
		return err
	}
	logger.Log.Debug("using project %v", project)

	svc, err := env.newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(svc, project)
}

func (c *commands) export(ctx context.Context, cfg *config.Config, env environment) error {
	project, err := client.ProjectID(env.lookupEnv)
	if err != nil {
		return err
	}

	if err := cfg.RequireInflux(); err != nil {
		return err
	}

	if *c.askPass && cfg.Influx.Password == "" {
		pass, err := env.readPassword()
		if err != nil {
			return fmt.Errorf("read Influx password: %w", err)
		}
		cfg.Influx.Password = string(pass)
	}

	out, err := env.newSink(cfg.Influx)
	if err != nil {
		return err
	}
	defer out.Close()

	svc, err := env.newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	ext := &exporter{
		config:  cfg,
		service: svc,
		sink:    out,
		project: project,
		now:     env.now,
	}

	result := ext.export(ctx)
	if result.err != nil {
		return result.err
	}

	fmt.Fprintf(env.stdout, "Exported %v points from %v metric types (%v failed).\n",
		result.points, result.types, result.failed)
	return nil
}

func main() {
	cmds := newCommands()
	command := kingpin.MustParse(cmds.app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmds.run(ctx, command, defaultEnvironment()); err != nil {
		panic(err)
	}
}
