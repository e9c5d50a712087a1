package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/leizm/cedar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "0.3.0"
)

// app carries the configuration and the open database of one invocation.
type app struct {
	v  *viper.Viper
	db *cedar.DB
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "cedar",
		Short: "inspect and maintain a cedar collection database",
		Long: fmt.Sprintf(`cedar (v%s)

Administrative tool for cedar databases: list and dump collections,
export and import them, and trigger compaction or pruning.`, Version),
		SilenceUsage: true,
	}

	root.PersistentFlags().String("path", "cedar.db", "database file (bolt) or directory (badger)")
	root.PersistentFlags().String("engine", string(cedar.EngineBolt), "storage engine (bolt, badger, memory)")
	root.PersistentFlags().Int("cache-size", 1000, "meta record cache size")
	root.PersistentFlags().Bool("verbose", false, "log debug traces")

	root.AddCommand(
		a.withDB(keysCmd(a)),
		a.withDB(dumpCmd(a)),
		a.withDB(getCmd(a)),
		a.withDB(exportCmd(a)),
		a.withDB(importCmd(a)),
		a.withDB(compactCmd(a)),
		a.withDB(pruneCmd(a)),
		a.withDB(statsCmd(a)),
		versionCmd(),
	)
	return root
}

// initConfig loads .env files and binds flags and CEDAR_* variables.
func (a *app) initConfig(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	a.v.SetEnvPrefix("cedar")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	return a.v.BindPFlags(cmd.Flags())
}

// withDB opens the database around cmd's RunE.
func (a *app) withDB(cmd *cobra.Command) *cobra.Command {
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		if err := a.initConfig(cmd); err != nil {
			return err
		}
		engine, err := cedar.ParseEngine(a.v.GetString("engine"))
		if err != nil {
			return err
		}
		opt := cedar.Options{
			Engine:        engine,
			MetaCacheSize: a.v.GetInt("cache-size"),
			Verbose:       a.v.GetBool("verbose"),
		}
		if opt.Verbose {
			opt.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
		a.db, err = cedar.Open(a.v.GetString("path"), opt)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.db.Close(); err == nil {
				err = cerr
			}
			a.db = nil
		}()
		return run(cmd, args)
	}
	return cmd
}
