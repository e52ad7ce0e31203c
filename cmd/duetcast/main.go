package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/internal/version"
	"github.com/duetcast/duetcast/server"
	"github.com/duetcast/duetcast/server/ai"
	"github.com/duetcast/duetcast/server/middleware"
	"github.com/duetcast/duetcast/server/show"
	"github.com/duetcast/duetcast/store"
	"github.com/duetcast/duetcast/store/db"
)

const (
	greetingBanner = `duetcast — two personas, one topic, six turns`
)

var (
	rootCmd = &cobra.Command{
		Use:   "duetcast",
		Short: "An AI talk show server.",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			instanceProfile, err := buildProfile()
			if err != nil {
				return err
			}

			srv, err := buildServer(ctx, instanceProfile)
			if err != nil {
				return err
			}

			sc := make(chan os.Signal, 1)
			signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sc
				srv.Shutdown(ctx)
				cancel()
			}()

			fmt.Println(greetingBanner)
			fmt.Printf("version %s, listening on %s:%d\n",
				version.GetCurrentVersion(instanceProfile.Mode), instanceProfile.Addr, instanceProfile.Port)
			return srv.Start(ctx)
		},
	}

	registerCmd = &cobra.Command{
		Use:   "register [username]",
		Short: "Create a user and print a fresh access token.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()

			instanceProfile, err := buildProfile()
			if err != nil {
				return err
			}
			st, err := buildStore(ctx, instanceProfile)
			if err != nil {
				return err
			}
			defer st.Close()

			username := args[0]
			user, err := st.GetUser(ctx, &store.FindUser{Username: &username})
			if err != nil {
				return err
			}
			if user == nil {
				user, err = st.CreateUser(ctx, &store.User{Username: username})
				if err != nil {
					return err
				}
			}

			token, err := newAccessToken()
			if err != nil {
				return err
			}
			if err := st.CreateAccessToken(ctx, &store.AccessToken{
				UserID:    user.ID,
				TokenHash: middleware.HashToken(token),
			}); err != nil {
				return err
			}

			// The raw token is shown exactly once; only its hash is stored.
			fmt.Printf("user: %s (id %d)\ntoken: %s\n", user.Username, user.ID, token)
			return nil
		},
	}
)

func buildProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:   viper.GetString("mode"),
		Addr:   viper.GetString("addr"),
		Port:   viper.GetInt("port"),
		Data:   viper.GetString("data"),
		Driver: viper.GetString("driver"),
		DSN:    viper.GetString("dsn"),
	}
	p.Version = version.GetCurrentVersion(p.Mode)
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func buildStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func buildServer(ctx context.Context, p *profile.Profile) (*server.Server, error) {
	st, err := buildStore(ctx, p)
	if err != nil {
		return nil, err
	}

	generator := ai.NewGenerator(&ai.Config{
		BaseURL: p.AIBaseURL,
		APIKey:  p.AIAPIKey,
		Model:   p.AIModel,
		Timeout: p.AITimeout,
	})
	if !p.IsAIEnabled() {
		slog.Warn("no AI API key configured, shows will produce fallback statements only")
	}

	manager := show.NewManager(generator, st, show.Config{
		OpeningPersona: store.Persona(p.ShowOpeningPersona),
		MaxTurns:       p.ShowMaxTurns,
		SettleDelay:    p.ShowSettleDelay,
	}, p.ShowMaxRunning)

	return server.NewServer(ctx, p, st, manager)
}

func newAccessToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("driver", "sqlite")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("dsn", rootCmd.PersistentFlags().Lookup("dsn")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("duetcast")
	viper.AutomaticEnv()

	rootCmd.AddCommand(registerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
