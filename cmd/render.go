package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Abraxas-365/hojavida/internal/document"
	"github.com/Abraxas-365/hojavida/internal/pdf"
	"github.com/Abraxas-365/hojavida/pkg/config"
	"github.com/Abraxas-365/hojavida/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/spf13/cobra"
)

var (
	renderFields   string
	renderSubject  string
	renderPrefix   string
	renderLocalDir string
	renderPreview  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a JSON field file through the résumé pipeline",
	Long: `Fills the résumé template with the fields in --fields, prints it with headless
Chrome and stores the PDF. With --local-dir the PDF is written below that
directory, otherwise it is published to the configured object store.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRender(cmd.Context(), appConfig)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderFields, "fields", "", "JSON object with template fields (required)")
	renderCmd.Flags().StringVar(&renderSubject, "subject", "", "subject id used in the storage key (required)")
	renderCmd.Flags().StringVar(&renderPrefix, "prefix", document.DefaultKeyPrefix, "storage key prefix")
	renderCmd.Flags().StringVar(&renderLocalDir, "local-dir", "", "write below this directory instead of the object store")
	renderCmd.Flags().StringVar(&renderPreview, "preview", "", "also write a JPEG of page 1 to this path")
	_ = renderCmd.MarkFlagRequired("fields")
	_ = renderCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(renderCmd)
}

func runRender(ctx context.Context, cfg *config.Config) error {
	fields, err := loadFields(renderFields)
	if err != nil {
		return err
	}

	pipeline, err := renderPipeline(ctx, cfg, renderLocalDir)
	if err != nil {
		return err
	}

	artifact, err := pipeline.Generator.GenerateAndPublish(ctx, renderSubject, fields, renderPrefix)
	if err != nil {
		return err
	}
	logx.Infof("Rendered %s (%d bytes, %d pages)", artifact.StorageKey, artifact.SizeBytes, artifact.PageCount)

	if renderPreview != "" {
		if err := writePreview(ctx, pipeline, artifact.StorageKey, renderPreview); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(artifact)
}

func renderPipeline(ctx context.Context, cfg *config.Config, localDir string) (*Pipeline, error) {
	if localDir == "" {
		return NewPipeline(ctx, cfg)
	}
	fs, err := fsxlocal.NewLocalFileSystem(localDir)
	if err != nil {
		return nil, err
	}
	return newPipelineWithStorage(cfg, fs, nil), nil
}

// loadFields reads a flat JSON object of template fields
func loadFields(path string) (document.TemplateContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fields %s: %w", path, err)
	}
	var fields document.TemplateContext
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse fields %s: %w", path, err)
	}
	if fields == nil {
		fields = document.TemplateContext{}
	}
	return fields, nil
}

func writePreview(ctx context.Context, pipeline *Pipeline, key, out string) error {
	data, err := pipeline.Storage.ReadFile(ctx, key)
	if err != nil {
		return fmt.Errorf("read back %s: %w", key, err)
	}
	jpg, err := pdf.NewInspector().Preview(data, 0)
	if err != nil {
		return fmt.Errorf("preview %s: %w", key, err)
	}
	if err := os.WriteFile(out, jpg, 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	logx.Infof("Wrote preview of %s to %s", key, out)
	return nil
}
