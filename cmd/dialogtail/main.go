// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command dialogtail prints the history of the chat dialog and, optionally,
// follows the new messages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/trace"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rusq/chatdialog/dialog"
	"github.com/rusq/chatdialog/internal/client"
	"github.com/rusq/chatdialog/internal/i18n"
	"github.com/rusq/chatdialog/internal/network"
	"github.com/rusq/chatdialog/internal/notify"
	"github.com/rusq/chatdialog/internal/primitive"
	"github.com/rusq/chatdialog/internal/wsbus"
	"github.com/rusq/chatdialog/message"
)

const (
	envPassword = "CHAT_PASSWORD"
)

var build = "dev"

var secrets = []string{".env", ".env.txt", "secrets.txt"}

type params struct {
	cfg Config

	configFile   string
	password     string
	follow       bool
	markRead     bool
	notify       bool
	jsonLog      bool
	logFile      string
	traceFile    string
	printVersion bool
	verbose      bool
}

func main() {
	loadSecrets(secrets)

	p, err := parseCmdLine(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if p.printVersion {
		fmt.Println(build)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, p, os.Stdout); err != nil {
		slog.Error("dialogtail failed", "error", err)
		os.Exit(1)
	}
}

func loadSecrets(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(
			fs.Output(),
			"dialogtail prints the messages of the chat dialog.\n\n"+
				"Usage:  %s [flags]\n\n"+
				"flags:\n",
			fs.Name())
		fs.PrintDefaults()
	}
}

func parseCmdLine(args []string) (params, error) {
	fs := flag.NewFlagSet("dialogtail", flag.ContinueOnError)
	fs.Usage = usage(fs)

	p := params{cfg: DefConfig}

	fs.StringVar(&p.configFile, "config", osenv.Value("CHAT_CONFIG", ""), "TOML configuration `file`, flags take precedence")
	fs.StringVar(&p.cfg.Server, "server", osenv.Value("CHAT_SERVER", DefConfig.Server), "chat server `URL`")
	fs.StringVar(&p.cfg.Email, "email", osenv.Value("CHAT_EMAIL", ""), "login `email`")
	fs.StringVar(&p.password, "password", osenv.Secret(envPassword, ""), "login password (environment: "+envPassword+"), prompted for if not set")
	fs.StringVar(&p.cfg.Connection, "connection", osenv.Value("CHAT_CONNECTION", ""), "connection `ID`, i.e. irc-localhost")
	fs.StringVar(&p.cfg.Dialog, "dialog", osenv.Value("CHAT_DIALOG", ""), "dialog `ID`, i.e. #convos, empty for the connection messages")
	fs.IntVar(&p.cfg.Pages, "pages", DefConfig.Pages, "number of history `pages` to load")
	fs.StringVar(&p.cfg.Locale, "locale", osenv.Value("CHAT_LOCALE", DefConfig.Locale), "notice `locale`")
	fs.StringVar(&p.cfg.Catalogue, "catalogue", "", "translation catalogue TOML `file`")
	fs.IntVar(&p.cfg.Limits.RequestsPerMinute, "rpm", DefConfig.Limits.RequestsPerMinute, "API `requests` per minute")
	fs.IntVar(&p.cfg.Limits.Retries, "retries", DefConfig.Limits.Retries, "API request `attempts`")
	fs.BoolVar(&p.follow, "f", false, "follow the new messages")
	fs.BoolVar(&p.markRead, "mark-read", false, "mark the dialog as read")
	fs.BoolVar(&p.notify, "notify", false, "show desktop notifications for the highlighted messages")
	fs.BoolVar(&p.jsonLog, "log-json", osenv.Value("JSON_LOG", false), "log in JSON format")
	fs.StringVar(&p.logFile, "log", osenv.Value("LOG_FILE", ""), "log `file`, if not specified, messages are printed to STDERR")
	fs.StringVar(&p.traceFile, "trace", osenv.Value("TRACE_FILE", ""), "trace `file` (optional)")
	fs.BoolVar(&p.printVersion, "V", false, "print version and exit")
	fs.BoolVar(&p.verbose, "v", osenv.Value("DEBUG", false), "verbose messages")

	os.Unsetenv(envPassword)

	if err := fs.Parse(args); err != nil {
		return p, err
	}
	if p.printVersion {
		return p, nil
	}
	if p.configFile != "" {
		fileCfg, err := LoadConfigFile(p.configFile)
		if err != nil {
			return p, err
		}
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		p.cfg = p.cfg.merge(fileCfg, set)
	}
	return p, p.cfg.Validate()
}

func run(ctx context.Context, p params, w io.Writer) error {
	lg, logStop, err := initLog(p.logFile, p.jsonLog, p.verbose)
	if err != nil {
		return err
	}
	defer logStop()
	network.SetLogger(lg)

	stopTrace := initTrace(p.traceFile)
	defer stopTrace()

	ctx, task := trace.NewTask(ctx, "main.run")
	defer task.End()

	tr, err := translator(p.cfg, lg)
	if err != nil {
		return err
	}

	cl, err := client.New(p.cfg.Server, client.WithLimits(p.cfg.Limits), client.WithLogger(lg))
	if err != nil {
		return err
	}
	password := p.password
	if password == "" {
		if password, err = requestPassword(os.Stderr, p.cfg.Email); err != nil {
			return err
		}
	}
	if err := cl.Login(ctx, p.cfg.Email, password); err != nil {
		return err
	}
	info, err := findDialog(ctx, cl, p.cfg.Connection, p.cfg.Dialog)
	if err != nil {
		return err
	}

	opts := []dialog.Option{dialog.WithAPI(cl), dialog.WithTranslator(tr), dialog.WithLogger(lg)}
	if p.notify {
		opts = append(opts, dialog.WithNotifier(notify.New(info.Name, notify.WithLogger(lg))))
	}
	var bus *wsbus.Bus
	if p.follow {
		bus, err = wsbus.Dial(ctx, cl.EventsURL(), wsbus.WithJar(cl.Raw().Jar), wsbus.WithLogger(lg))
		if err != nil {
			return err
		}
		defer bus.Close()
		opts = append(opts, dialog.WithBus(bus))
	}
	d := dialog.New(info, opts...)

	if err := loadPages(ctx, d, p.cfg.Pages); err != nil {
		return err
	}
	pr := newPrinter(w)
	pr.Header(d)
	pr.Messages(d.Messages())

	if p.markRead {
		if err := d.SetLastRead(ctx); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
	}
	if bus == nil {
		return nil
	}
	return follow(ctx, d, bus, pr, p.markRead)
}

// translator returns the translator for the configured locale or catalogue.
func translator(cfg Config, lg *slog.Logger) (i18n.Translator, error) {
	if cfg.Catalogue == "" {
		return i18n.New(cfg.Locale, i18n.WithLogger(lg)), nil
	}
	cat, err := i18n.LoadCatalogueFile(cfg.Catalogue)
	if err != nil {
		return nil, err
	}
	dict, err := i18n.FromCatalogue(cat, i18n.WithLogger(lg))
	if err != nil {
		return nil, err
	}
	return dict, nil
}

// dialogLister returns the dialogs of the user.
type dialogLister interface {
	Dialogs(ctx context.Context) ([]dialog.Info, error)
}

// findDialog returns the dialog information from the server.  If the dialog
// is not listed, the minimal information is returned.
func findDialog(ctx context.Context, dl dialogLister, connectionID, dialogID string) (dialog.Info, error) {
	dd, err := dl.Dialogs(ctx)
	if err != nil {
		return dialog.Info{}, err
	}
	for _, info := range dd {
		if info.ConnectionID != connectionID {
			continue
		}
		if info.DialogID != nil && *info.DialogID == dialogID {
			return info, nil
		}
	}
	info := dialog.Info{ConnectionID: connectionID, Name: primitive.NVL(dialogID, connectionID)}
	if dialogID != "" {
		info.DialogID = primitive.Ptr(dialogID)
	}
	slog.DebugContext(ctx, "dialog is not listed", "connection_id", connectionID, "dialog_id", dialogID)
	return info, nil
}

// loadPages loads up to n pages of the history.  On failure, the dialog
// status is set to error.
func loadPages(ctx context.Context, d *dialog.Dialog, n int) error {
	for range n {
		before := firstMessage(d)
		if before != nil && before.EndOfHistory {
			break
		}
		if err := d.LoadHistory(ctx, before); err != nil {
			st := d.State()
			d.Update(dialog.Update{
				Status: primitive.Ptr(dialog.StatusError),
				Errors: primitive.Ptr(st.Errors + 1),
			})
			return err
		}
	}
	return nil
}

// follow prints the new messages until the context is cancelled or the
// server closes the connection.  If markRead is true, the dialog is marked
// as read whenever the unread counter grows.
func follow(ctx context.Context, d *dialog.Dialog, bus *wsbus.Bus, pr *printer, markRead bool) error {
	connID := d.ConnectionID()
	dialogID, _ := d.DialogID()
	unsubscribe := bus.Subscribe(connID, dialogID, d.Handle)
	defer unsubscribe()

	unreadC := make(chan struct{}, 1)
	stopObserving := d.Observe(func(prev, cur dialog.State) {
		pr.Update(prev, cur)
		if markRead && cur.Unread > prev.Unread {
			select {
			case unreadC <- struct{}{}:
			default:
			}
		}
	})
	defer stopObserving()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		return bus.Run(ctx)
	})
	if markRead {
		eg.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-unreadC:
					if err := d.SetLastRead(ctx); err != nil && ctx.Err() == nil {
						slog.WarnContext(ctx, "failed to mark the dialog as read", "error", err)
					}
				}
			}
		})
	}
	return eg.Wait()
}

// firstMessage returns the oldest loaded message or nil.
func firstMessage(d *dialog.Dialog) *message.Message {
	mm := d.Messages()
	if len(mm) == 0 {
		return nil
	}
	return mm[0]
}
