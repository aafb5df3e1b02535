package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-report-export/adapters/exportapi"
	exporthttp "github.com/goliatone/go-report-export/adapters/http"
	reportdatabun "github.com/goliatone/go-report-export/adapters/reportdata/bun"
	"github.com/goliatone/go-report-export/export"
	"github.com/goliatone/go-report-export/query"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report download API",
		Long: `serve opens the report request store and answers
GET /reports/export?request=<id>&type=<token> with the exported file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, a.cfg.Database.DSN)
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer func() {
		_ = db.Close()
	}()

	store := reportdatabun.NewStore(db)
	if err := store.CreateSchema(ctx); err != nil {
		return err
	}

	handler, subs, err := a.newHandler(ctx, store)
	if err != nil {
		return err
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	srv := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("address", srv.Addr).Info("serving report downloads")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newHandler builds the download handler. Descriptors and data are loaded through
// the report:definition and report:data queries so any registered loader can back the API.
func (a *app) newHandler(ctx context.Context, loader query.ReportLoader) (*exporthttp.Handler, []dispatcher.Subscription, error) {
	exporter, err := a.newExporter(ctx)
	if err != nil {
		return nil, nil, err
	}
	subs, err := query.RegisterHandlers(loader)
	if err != nil {
		return nil, nil, err
	}

	handler := exporthttp.NewHandler(exporthttp.Config{
		Exporter: exporter,
		Loader: exportapi.ReportLoaderFuncs{
			DescribeFunc: func(ctx context.Context, requestID string) (export.ReportDescriptor, error) {
				return dispatcher.Query[query.ReportDefinition, export.ReportDescriptor](ctx, query.ReportDefinition{RequestID: requestID})
			},
			LoadDataFunc: func(ctx context.Context, requestID string) (export.EvaluatedData, error) {
				snapshot, err := dispatcher.Query[query.ReportData, query.ReportSnapshot](ctx, query.ReportData{RequestID: requestID})
				if err != nil {
					return export.EvaluatedData{}, err
				}
				return snapshot.Data, nil
			},
		},
		Logger: component(a.logger, "api"),
	})
	return handler, subs, nil
}
