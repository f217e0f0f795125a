package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"word-counter/internal/client"
)

// globalOptions are the persistent flags shared by the remote commands.
type globalOptions struct {
	server  string
	timeout time.Duration
	retries int
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "wordcount",
		Short: "Count word frequencies in plain text files",
		Long: `wordcount counts how often each word occurs in plain text.

Words are split on spaces and , . ; : ! ?, lowercased and trimmed. The
result lists one "word: count" line per distinct word.

Examples:
  wordcount count notes.txt
  wordcount count --sorted --lf a.txt b.txt
  wordcount upload notes.txt --server http://localhost:8080
  wordcount fetch http://localhost:8080/wordcounter/getcountresult/notes.txt_1700000000000000000`,
		SilenceUsage: true,
	}

	defaultServer := os.Getenv("WC_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	cmd.PersistentFlags().AddFlagSet(opts.flagSet(defaultServer))

	cmd.AddCommand(
		newCountCmd(),
		newUploadCmd(opts),
		newFetchCmd(opts),
	)
	return cmd
}

// flagSet declares the connection flags shared by upload and fetch.
func (o *globalOptions) flagSet(defaultServer string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("remote", pflag.ContinueOnError)
	fs.StringVarP(&o.server, "server", "s", defaultServer, "Word counter service URL (env WC_SERVER)")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Second, "Per attempt HTTP timeout")
	fs.IntVar(&o.retries, "retries", 3, "Retries for transient failures")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log retry attempts to stderr")
	return fs
}

// newClient builds the HTTP client from the persistent flags.
func (o *globalOptions) newClient(cmd *cobra.Command) (*client.Client, error) {
	copts := client.Options{
		RetryMax: o.retries,
		Timeout:  o.timeout,
	}
	if o.verbose {
		l := logrus.New()
		l.SetOutput(cmd.ErrOrStderr())
		l.SetLevel(logrus.DebugLevel)
		copts.Logger = logrusLeveled{l}
	}
	return client.New(o.server, copts)
}

// logrusLeveled adapts logrus to retryablehttp's key/value logger.
type logrusLeveled struct {
	l *logrus.Logger
}

func (a logrusLeveled) fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			f[k] = kv[i+1]
		}
	}
	return f
}

func (a logrusLeveled) Error(msg string, kv ...interface{}) { a.l.WithFields(a.fields(kv)).Error(msg) }
func (a logrusLeveled) Info(msg string, kv ...interface{})  { a.l.WithFields(a.fields(kv)).Info(msg) }
func (a logrusLeveled) Debug(msg string, kv ...interface{}) { a.l.WithFields(a.fields(kv)).Debug(msg) }
func (a logrusLeveled) Warn(msg string, kv ...interface{})  { a.l.WithFields(a.fields(kv)).Warn(msg) }
