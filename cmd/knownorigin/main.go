package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/knownorigin/internal/api"
	"github.com/mtlprog/knownorigin/internal/config"
	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/export"
	"github.com/mtlprog/knownorigin/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	setupLogging(cfg)

	if err := newCLI(cfg).RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newCLI(cfg config.Config) *cli.App {
	pageFlags := []cli.Flag{
		&cli.IntFlag{Name: "first", Value: api.DefaultPageSize, Usage: "page size (max 1000)"},
		&cli.IntFlag{Name: "skip", Usage: "number of fragments to skip"},
		&cli.BoolFlag{Name: "token", Usage: "read minted tokens instead of editions"},
	}

	return &cli.App{
		Name:  "knownorigin",
		Usage: "KnownOrigin listings: normalized NFTs, owners and sale orders",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API with the quote and export workers",
				Action: withApp(cfg, serve),
			},
			{
				Name:  "fetch",
				Usage: "print one normalized page as JSON",
				Flags: pageFlags,
				Action: withApp(cfg, func(c *cli.Context, a *app) error {
					result, err := a.market.Fetch(c.Context, pageParams(c), pageFilters(c))
					if err != nil {
						return err
					}
					return printJSON(result)
				}),
			},
			{
				Name:  "count",
				Usage: "print the number of listings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "token", Usage: "count tokens only"},
					&cli.BoolFlag{Name: "edition", Usage: "count editions only"},
				},
				Action: withApp(cfg, func(c *cli.Context, a *app) error {
					var filters *domain.Filters
					switch {
					case c.Bool("token"):
						filters = &domain.Filters{IsToken: true}
					case c.Bool("edition"):
						filters = &domain.Filters{}
					}
					total, err := a.market.Count(c.Context, domain.Params{First: domain.MaxPageSize}, filters)
					if err != nil {
						return err
					}
					return printJSON(api.CountResponse{Total: total})
				}),
			},
			{
				Name:      "get",
				Usage:     "print one NFT and its active order",
				ArgsUsage: "<contract> <tokenId>",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "token", Usage: "look up a minted token"}},
				Action: withApp(cfg, func(c *cli.Context, a *app) error {
					if c.NArg() != 2 {
						return errors.New("usage: get <contract> <tokenId>")
					}
					asset, order, err := a.market.FetchOne(c.Context, c.Args().Get(0), c.Args().Get(1), pageFilters(c))
					if err != nil {
						return err
					}
					return printJSON(api.NFTResponse{NFT: asset, Order: order})
				}),
			},
			{
				Name:  "transfer",
				Usage: "transfer a minted token from the keystore wallet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
					&cli.StringFlag{Name: "contract", Usage: "contract address (informational)"},
					&cli.StringFlag{Name: "token-id", Required: true, Usage: "token id"},
				},
				Action: withApp(cfg, transferToken),
			},
			{
				Name:  "export",
				Usage: "export all listings to a spreadsheet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "xlsx", Usage: "xlsx or sheets"},
					&cli.StringFlag{Name: "out", Value: "listings.xlsx", Usage: "xlsx output path"},
				},
				Action: withApp(cfg, func(c *cli.Context, a *app) error {
					exporter, err := newExporter(c.Context, a, c.String("format"), c.String("out"))
					if err != nil {
						return err
					}
					return exporter.Export(c.Context)
				}),
			},
		},
	}
}

func withApp(cfg config.Config, action func(*cli.Context, *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := newApp(c.Context, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return action(c, a)
	}
}

func serve(c *cli.Context, a *app) error {
	ctx, stop := context.WithCancel(c.Context)
	defer stop()

	quoteWorker := worker.NewQuoteWorker(a.external, a.cfg.QuoteWorkerInterval)
	go quoteWorker.Run(ctx)

	if a.cfg.SheetsEnabled() {
		exporter, err := newExporter(ctx, a, "sheets", "")
		if err != nil {
			return err
		}
		go worker.NewExportWorker(exporter, a.cfg.ExportWorkerInterval).Run(ctx)
	} else {
		slog.Info("Google Sheets not configured, export worker disabled")
	}

	srv := api.NewServer(a.cfg.HTTPPort, a.market)

	go func() {
		slog.Info("HTTP server listening", "port", a.cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return nil
}

func transferToken(c *cli.Context, a *app) error {
	asset, _, err := a.market.FetchOne(c.Context, c.String("contract"), c.String("token-id"), &domain.Filters{IsToken: true})
	if err != nil {
		return err
	}

	transfers, identity, err := a.transferService(c.Context)
	if err != nil {
		return err
	}

	txHash, err := transfers.Transfer(c.Context, identity, c.String("to"), asset)
	if err != nil {
		return err
	}
	slog.Info("transfer submitted", "asset", asset.ID, "to", c.String("to"), "tx", txHash)
	return printJSON(map[string]string{"txHash": txHash})
}

func newExporter(ctx context.Context, a *app, format, out string) (*export.Service, error) {
	var writer export.SheetWriter
	switch format {
	case "xlsx":
		writer = export.NewXLSXWriter(out)
	case "sheets":
		if !a.cfg.SheetsEnabled() {
			return nil, errors.New("SHEETS_SPREADSHEET_ID and GOOGLE_CREDENTIALS_JSON are required for sheets export")
		}
		w, err := export.NewSheetsWriter(ctx, a.cfg.SheetsSpreadsheetID, a.cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		writer = w
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return export.NewService(a.market, writer, domain.MaxPageSize), nil
}

func pageParams(c *cli.Context) domain.Params {
	return domain.Params{First: min(c.Int("first"), domain.MaxPageSize), Skip: c.Int("skip")}
}

func pageFilters(c *cli.Context) *domain.Filters {
	if c.Bool("token") {
		return &domain.Filters{IsToken: true}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
