package main

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"github.com/Dosada05/poker-leaderboard/config"
	"github.com/Dosada05/poker-leaderboard/db"
	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/repositories"
	"github.com/Dosada05/poker-leaderboard/services"
	"github.com/Dosada05/poker-leaderboard/storage"
)

// env собирает зависимости команды; соединение открывается лениво.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	conn   *sql.DB
}

func (e *env) db() (*sql.DB, error) {
	if e.conn != nil {
		return e.conn, nil
	}
	conn, err := db.Connect(e.cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, err
	}
	e.conn = conn
	return conn, nil
}

func (e *env) exportService(c *cli.Context, withUploader bool) (services.ExportService, error) {
	conn, err := e.db()
	if err != nil {
		return nil, err
	}
	var uploader storage.FileUploader
	if withUploader {
		uploader, err = storage.NewCloudflareR2Uploader(c.Context, storage.CloudflareR2UploaderConfig{
			AccountID:       e.cfg.R2.AccountID,
			AccessKeyID:     e.cfg.R2.AccessKeyID,
			SecretAccessKey: e.cfg.R2.SecretAccessKey,
			BucketName:      e.cfg.R2.BucketName,
			PublicBaseURL:   e.cfg.R2.PublicBaseURL,
			KeyPrefix:       e.cfg.R2.KeyPrefix,
			Endpoint:        e.cfg.R2.Endpoint,
		})
		if err != nil {
			return nil, err
		}
	}
	return services.NewExportService(repositories.NewPostgresStandingRepository(conn), uploader, nil, e.logger), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	e := &env{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
	defer func() {
		if e.conn != nil {
			_ = e.conn.Close()
		}
	}()

	app := &cli.App{
		Name:  "standingsctl",
		Usage: "administration of the series leaderboard",
		Commands: []*cli.Command{
			migrateCommand(e),
			exportCommand(e),
			publishCommand(e),
			deleteCommand(e),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply the player_standings schema",
		Action: func(c *cli.Context) error {
			conn, err := e.db()
			if err != nil {
				return err
			}
			if err := db.Migrate(c.Context, conn); err != nil {
				return err
			}
			fmt.Println("schema is up to date")
			return nil
		},
	}
}

func exportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write standings of one or more series to a file or stdout",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "series", Aliases: []string{"s"}, Usage: "series to export (repeatable)", Required: true},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(leaderboard.FormatCSV), Usage: "csv, json or xlsx"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
		},
		Action: func(c *cli.Context) error {
			format, err := leaderboard.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			es, err := e.exportService(c, false)
			if err != nil {
				return err
			}
			payload, err := es.Export(c.Context, c.StringSlice("series"), format)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}
			if _, err := w.Write(payload.Data); err != nil {
				return err
			}
			if path := c.String("out"); path != "" {
				fmt.Fprintf(os.Stderr, "wrote %d standings to %s\n", payload.Rows, path)
			}
			return nil
		},
	}
}

func publishCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "upload csv and json snapshots of every series to R2",
		Action: func(c *cli.Context) error {
			es, err := e.exportService(c, true)
			if err != nil {
				return err
			}
			uploaded, err := es.PublishAll(c.Context)
			for _, u := range uploaded {
				fmt.Println(u.Location)
			}
			return err
		},
	}
}

func deleteCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "remove one player standing by id",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "standing id", Required: true},
		},
		Action: func(c *cli.Context) error {
			conn, err := e.db()
			if err != nil {
				return err
			}
			repo := repositories.NewPostgresStandingRepository(conn)
			if err := repo.Delete(c.Context, c.String("id")); err != nil {
				return err
			}
			fmt.Printf("deleted standing %s\n", c.String("id"))
			return nil
		},
	}
}
