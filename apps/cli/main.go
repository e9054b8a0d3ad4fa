package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/subject"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	"github.com/trezcool/mahudhurio/storage/remote"
)

const appName = "mahudhurio"

var nowFunc = time.Now

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "CLI : ", log.LstdFlags), conf)
	logger.Enable(!conf.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(conf, logger, os.Stdin, os.Stdout)
	if err := c.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", c.message(err))
		if core.IsRemote(err) {
			logger.Error(err.Error(), err)
		}
		stop()
		os.Exit(1)
	}
}

type cli struct {
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	in         io.Reader
	out        io.Writer

	client     *remote.Client
	subjects   *subject.Service
	attendance *attendance.Service
	analytics  *analytics.Service
}

func newCLI(conf *core.Config, logger core.Logger, in io.Reader, out io.Writer) *cli {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	return &cli{
		conf:       conf,
		logger:     logger,
		validate:   validate,
		translator: translator,
		in:         in,
		out:        out,
	}
}

// connect wires the services to the backend at baseURL.
func (c *cli) connect(baseURL string, timeout time.Duration) {
	c.client = remote.NewClient(core.BackendConfig{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: timeout})
	c.subjects = subject.NewService(remote.NewSubjectRepository(c.client), c.validate)
	c.attendance = attendance.NewService(remote.NewAttendanceRepository(c.client), c.validate)
	c.analytics = analytics.NewService(remote.NewAnalyticsRepository(c.client))
}

// message is the one line shown for err.
func (c *cli) message(err error) string {
	return core.FirstMessage(err, c.translator)
}

func (c *cli) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *cli) rootCmd() *cobra.Command {
	var (
		backendURL string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Track lecture attendance from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.connect(backendURL, timeout)
		},
	}
	cmd.SetOut(c.out)
	cmd.SetIn(c.in)

	cmd.PersistentFlags().StringVar(&backendURL, "backend", c.conf.Backend.BaseURL, "Attendance API origin")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", c.conf.Backend.Timeout, "Timeout of each backend call (0 for none)")

	cmd.AddCommand(
		c.subjectsCmd(),
		c.markCmd(),
		c.recordsCmd(),
		c.analyticsCmd(),
		c.exportCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				c.printf("%s version %s\n", appName, c.conf.Build)
			},
		},
	)
	return cmd
}
