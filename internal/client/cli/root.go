// Package cli реализует консольный клиент книжного клуба на cobra.
// Каждый запуск команды соответствует одной навигации клиента: кэш
// пользователя читается один раз, затем guard решает, можно ли выполнить команду.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/book-club/internal/client"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
)

const (
	defaultServer = "http://localhost:5000"
	envServer     = "BOOKCLUB_SERVER"
	userFile      = "user.json"
	cookiesFile   = "cookies.json"
)

// ErrLoginFirst — команда требует входа.
var ErrLoginFirst = errors.New("you must be logged in, run `bookclub-cli login` first")

// App — состояние одного запуска CLI.
type App struct {
	in           io.Reader
	out          io.Writer
	errOut       io.Writer
	readPassword func() (string, error)

	server   string
	stateDir string
	verbose  bool

	log     *slog.Logger
	api     *client.API
	jar     *client.FileJar
	session *client.Session
}

// Option настраивает App.
type Option func(*App)

// WithIO подменяет стандартные потоки ввода и вывода.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
		a.errOut = errOut
	}
}

// WithPasswordReader подменяет чтение пароля с терминала.
func WithPasswordReader(fn func() (string, error)) Option {
	return func(a *App) {
		a.readPassword = fn
	}
}

// NewRootCmd собирает дерево команд bookclub-cli.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &App{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.readPassword == nil {
		a.readPassword = a.terminalPassword
	}

	root := &cobra.Command{
		Use:           "bookclub-cli",
		Short:         "Command line client for the book club API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	server := os.Getenv(envServer)
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&a.server, "server", server, "Book club server address (env "+envServer+")")
	root.PersistentFlags().StringVar(&a.stateDir, "state-dir", defaultStateDir(), "Directory for the cached user and session cookie")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging to stderr")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.booksCmd(),
		a.versionCmd(),
	)
	return root
}

// init поднимает клиент и выполняет загрузку состояния из кэша.
func (a *App) init() error {
	const op = "cli.App.init"

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	serverURL, err := url.Parse(a.server)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	jar, err := client.NewFileJar(filepath.Join(a.stateDir, cookiesFile), serverURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	api, err := client.NewAPI(a.server, &http.Client{Jar: jar, Timeout: 10 * time.Second})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.api = api
	a.jar = jar
	a.session = client.NewSession(a.log, api, client.NewFileCache(filepath.Join(a.stateDir, userFile)))
	if err := a.session.Bootstrap(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.log.Debug("session bootstrapped", slog.String("state", a.session.State().String()))
	return nil
}

// guard проверяет доступ к view. done == true означает, что команда
// не должна выполняться дальше.
func (a *App) guard(view client.View) (done bool, err error) {
	d := a.session.Guard(view)
	switch d.Action {
	case client.Placeholder:
		return true, errors.New("client state is still loading")
	case client.Redirect:
		if d.Target == client.ViewAuth {
			return true, ErrLoginFirst
		}
		user, _ := a.session.User()
		fmt.Fprintf(a.out, "Already logged in as %s <%s>\n", user.Name, user.Email)
		return true, nil
	}
	return false, nil
}

// loginRequired переводит ErrLoginRequired в понятное сообщение и чистит cookie.
func (a *App) loginRequired(err error) error {
	if !errors.Is(err, client.ErrLoginRequired) {
		return err
	}
	if cerr := a.jar.Clear(); cerr != nil {
		a.log.Warn("failed to clear cookies", sl.Err(cerr))
	}
	return errors.New("session expired, run `bookclub-cli login` again")
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bookclub"
	}
	return filepath.Join(dir, "bookclub")
}
