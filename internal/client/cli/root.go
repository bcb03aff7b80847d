package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/client/config"
	"github.com/dmitrijs2005/onboarding/internal/flagx"
	"github.com/spf13/cobra"
)

// Execute runs the onboard command line against the process's stdio.
func Execute(ctx context.Context) error {
	cfg, err := config.Load(flagx.ConfigPath(os.Args[1:]))
	if err != nil {
		return err
	}
	root := NewRootCommand(cfg, os.Stdin, os.Stdout, os.Stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. cfg holds the values loaded from
// the environment and the config file; flags override them.
func NewRootCommand(cfg *config.Config, in io.Reader, out, errOut io.Writer) *cobra.Command {
	var app *App
	var configPath string

	root := &cobra.Command{
		Use:           "onboard",
		Short:         "Onboarding wizard client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// help and completion need no session
			if cmd.RunE == nil {
				return nil
			}
			a, err := NewApp(cmd.Context(), cfg, in, out, errOut)
			if err != nil {
				return err
			}
			app = a
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	// withApp runs fn and releases the session store afterwards.
	withApp := func(fn func(ctx context.Context, a *App) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			defer app.Close()
			return fn(cmd.Context(), app)
		}
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "JSON config file (read before flags)")
	pf.StringVarP(&cfg.ServerURL, "server", "s", cfg.ServerURL, "API base URL")
	pf.DurationVar(&cfg.AutosaveDelay, "autosave-delay", cfg.AutosaveDelay, "debounce window for autosave")
	pf.StringVar(&cfg.SessionDBPath, "session-db", cfg.SessionDBPath, "session database path (default ~/.onboarding/session.db)")
	pf.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	pf.BoolVar(&cfg.LogDebug, "debug", cfg.LogDebug, "verbose logging to stderr")

	var name, email string
	signup := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.Signup(ctx, name, email)
		}),
	}
	signup.Flags().StringVar(&name, "name", "", "display name")
	signup.Flags().StringVar(&email, "email", "", "email address")

	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.Login(ctx, email)
		}),
	}
	login.Flags().StringVar(&email, "email", "", "email address")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.Logout(ctx)
		}),
	}

	me := &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.Me(ctx)
		}),
	}

	form := &cobra.Command{
		Use:   "form",
		Short: "Inspect the saved form",
	}
	form.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every step as saved on the server",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.ShowForm(ctx)
		}),
	}, &cobra.Command{
		Use:   "image-url",
		Short: "Print a short-lived download URL for the profile image",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.ProfileImageURL(ctx)
		}),
	})

	wiz := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in the onboarding steps interactively",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			return a.RunWizard(ctx)
		}),
	}

	health := &cobra.Command{
		Use:   "health",
		Short: "Check that the server and its store are up",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App) error {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			status, err := a.api.Health(ctx)
			if err != nil {
				return err
			}
			a.printf("%s\n", status)
			return nil
		}),
	}

	root.AddCommand(signup, login, logout, me, form, wiz, health)
	return root
}
