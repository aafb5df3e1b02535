package main

import (
	"context"

	resourcesfs "github.com/goliatone/go-report-export/adapters/resources/fs"
	resourcess3 "github.com/goliatone/go-report-export/adapters/resources/s3"
	"github.com/goliatone/go-report-export/export"
)

func (a *app) newResolver(ctx context.Context) (export.TemplateResolver, error) {
	if a.cfg.Resources.Type == "s3" {
		s3cfg := a.cfg.Resources.S3
		resolver, err := resourcess3.NewResolver(ctx, resourcess3.Config{
			Region:         s3cfg.Region,
			Bucket:         s3cfg.Bucket,
			Endpoint:       s3cfg.Endpoint,
			AccessKey:      s3cfg.AccessKey,
			SecretKey:      s3cfg.SecretKey,
			Prefix:         s3cfg.Prefix,
			TemplatePrefix: a.cfg.Export.TemplatePrefix,
			ForcePathStyle: s3cfg.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return resolver, nil
	}

	resolver := resourcesfs.NewResolver(a.cfg.Resources.Roots)
	if a.cfg.Export.TemplatePrefix != "" {
		resolver.Prefix = a.cfg.Export.TemplatePrefix
	}
	return resolver, nil
}

func (a *app) newExporter(ctx context.Context) (*export.Exporter, error) {
	resolver, err := a.newResolver(ctx)
	if err != nil {
		return nil, err
	}
	location, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return export.NewExporter(export.ExporterConfig{
		Resolver:          resolver,
		Spreadsheet:       export.SpreadsheetRenderer{Timezone: a.cfg.Export.Timezone},
		Delimited:         export.DelimitedRenderer{Timezone: a.cfg.Export.Timezone},
		TemplateExtension: a.cfg.Export.TemplateExtension,
		TimeParameter:     a.cfg.Export.TimeParameter,
		Location:          location,
		MaxBytes:          a.cfg.Export.MaxBytes,
		Logger:            component(a.logger, "export"),
	}), nil
}
