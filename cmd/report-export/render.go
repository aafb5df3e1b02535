package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-report-export/command"
	"github.com/goliatone/go-report-export/export"
)

// snapshotFile is the on-disk shape read by the render command.
type snapshotFile struct {
	Report struct {
		Name       string                   `json:"name"`
		Definition string                   `json:"definition"`
		Template   *export.TemplateResource `json:"template"`
	} `json:"report"`
	Data struct {
		DataSets   []export.DataSet `json:"datasets"`
		Parameters map[string]any   `json:"parameters"`
	} `json:"data"`
}

func (s snapshotFile) descriptor() export.ReportDescriptor {
	return export.ReportDescriptor{
		Identity:   export.ReportIdentity{Name: s.Report.Name},
		Definition: s.Report.Definition,
		Template:   s.Report.Template,
	}
}

func (s snapshotFile) evaluated() export.EvaluatedData {
	return export.EvaluatedData{
		DataSets: s.Data.DataSets,
		Context:  export.EvaluationContext{Parameters: s.Data.Parameters},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		dataPath string
		token    string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report snapshot file into an export",
		Long: `render reads an evaluated report snapshot from a JSON file and writes
the exported file into the output directory, named after the report
and its reporting period.`,
		Example: "  report-export render --data anc.json --type excel --out ./exports",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.render(cmd.Context(), dataPath, token, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "snapshot JSON file")
	cmd.Flags().StringVarP(&token, "type", "t", "", "export type (excel, xlsx, csv, ...)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (a *app) render(ctx context.Context, dataPath, token, outDir string) (string, error) {
	snapshot, err := readSnapshot(dataPath)
	if err != nil {
		return "", err
	}

	exporter, err := a.newExporter(ctx)
	if err != nil {
		return "", err
	}
	subs, err := command.RegisterHandlers(nil, exporter)
	if err != nil {
		return "", err
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	artifact, err := dispatcher.DispatchWithResult[command.ExportReport, export.Artifact](ctx, command.ExportReport{
		Report: snapshot.descriptor(),
		Data:   snapshot.evaluated(),
		Format: token,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outDir, filepath.Base(artifact.Filename))
	if err := os.WriteFile(path, artifact.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"export_id": artifact.ID,
		"file":      path,
		"bytes":     artifact.Size(),
	}).Info("report exported")
	return path, nil
}

func readSnapshot(path string) (snapshotFile, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return snapshotFile{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot snapshotFile
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&snapshot); err != nil {
		return snapshotFile{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snapshot, nil
}
