package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/backend"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/config"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/logging"
	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

// openFunc opens the backend the commands operate on. Tests substitute their own.
type openFunc func(ctx context.Context, backendOverride string) (*backend.Backend, error)

func openFromEnv(ctx context.Context, backendOverride string) (*backend.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backendOverride != "" {
		cfg.SnapshotBackend = backendOverride
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return backend.Open(ctx, cfg)
}

// snapshotTarget is where the commands read and write content: a backend
// opened directly, or a running relay reached over HTTP.
type snapshotTarget interface {
	Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error)
	Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error
	List(ctx context.Context) ([]domain.ScreenID, error)
	Close()
}

type backendTarget struct {
	*backend.Backend
}

func (t backendTarget) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	return t.Store.Get(ctx, screenID)
}

func (t backendTarget) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	return t.Store.Put(ctx, screenID, content)
}

type cli struct {
	open            openFunc
	backendOverride string
	server          string
	snapshots       snapshotTarget
}

func newRootCmd(open openFunc) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:   "snapshotctl",
		Short: "Inspect and repair persisted screen content",
		Long: `snapshotctl reads and writes the content a display is sent on connect.

With --server it goes through a running relay's HTTP API, and put is pushed
to connected displays immediately. Without it, it talks to the snapshot
backend selected by SNAPSHOT_BACKEND (or --backend) directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.server != "" {
				rc, err := newRelayClient(c.server)
				if err != nil {
					return err
				}
				c.snapshots = rc
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			b, err := c.open(ctx, c.backendOverride)
			if err != nil {
				return fmt.Errorf("failed to open snapshot backend: %w", err)
			}
			c.snapshots = backendTarget{b}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.snapshots != nil {
				c.snapshots.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.backendOverride, "backend", "", "snapshot backend (file, memory, redis, postgres, sqlite); defaults to SNAPSHOT_BACKEND")
	root.PersistentFlags().StringVar(&c.server, "server", "", "base URL of a running relay, e.g. http://localhost:8080; overrides --backend")

	root.AddCommand(c.getCmd(), c.putCmd(), c.listCmd())
	return root
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <screenId>",
		Short: "Print the stored content for a screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			content, err := c.snapshots.Get(ctx, domain.ScreenID(args[0]))
			if errors.Is(err, domain.ErrSnapshotNotFound) {
				return fmt.Errorf("no snapshot for screen %q", args[0])
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(content))
			return err
		},
	}
}

func (c *cli) putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <screenId> <file|->",
		Short: "Store content for a screen, read from a file or stdin",
		Long: `put replaces the stored content for a screen.

With --server the relay records the content as if the screen's dashboard had
synced it, so connected displays update at once. Without --server the backend
is written directly; a relay that has already loaded the screen keeps serving
its in-memory copy until it restarts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}
			if !json.Valid(data) {
				return fmt.Errorf("%s does not contain valid JSON", args[1])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if err := c.snapshots.Put(ctx, domain.ScreenID(args[0]), domain.Content(data)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %d bytes for %s\n", len(data), args[0])
			return err
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List screens with stored content",
		Long: `list prints one screen id per line. With --server it lists the screens
the relay holds content for in memory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			ids, err := c.snapshots.List(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func readSource(stdin io.Reader, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return data, nil
}
