package resourcess3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/goliatone/go-report-export/export"
)

// DefaultTemplatePrefix is the directory under each provider that holds templates.
const DefaultTemplatePrefix = "reports"

// ObjectGetter is the subset of the S3 client used by the resolver.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config describes the bucket holding report templates.
type Config struct {
	Region         string
	Bucket         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Prefix         string
	TemplatePrefix string
	ForcePathStyle bool
}

// Resolver loads report templates from an S3 bucket.
type Resolver struct {
	Client ObjectGetter
	Bucket string
	Prefix string
	// TemplatePrefix defaults to DefaultTemplatePrefix.
	TemplatePrefix string
}

// NewResolver builds an S3 client from cfg and wraps it in a Resolver.
func NewResolver(ctx context.Context, cfg Config) (*Resolver, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, export.NewError(export.KindValidation, "s3 bucket is required", nil)
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Resolver{
		Client:         client,
		Bucket:         cfg.Bucket,
		Prefix:         cfg.Prefix,
		TemplatePrefix: cfg.TemplatePrefix,
	}, nil
}

// Resolve reads <prefix>/<provider>/<template prefix>/<path> from the bucket.
func (r *Resolver) Resolve(ctx context.Context, provider, templatePath string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, export.NewError(export.KindInternal, "s3 resolver is not configured", nil)
	}

	key, err := r.Key(provider, templatePath)
	if err != nil {
		return nil, err
	}

	out, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, export.NewError(export.KindResourceNotFound, fmt.Sprintf("template s3://%s/%s not found", r.Bucket, key), err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, export.NewError(export.KindResourceNotFound, fmt.Sprintf("get template s3://%s/%s", r.Bucket, key), err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, export.NewError(export.KindResourceNotFound, fmt.Sprintf("read template s3://%s/%s", r.Bucket, key), err)
	}
	return data, nil
}

// Key returns the object key for a provider template.
func (r *Resolver) Key(provider, templatePath string) (string, error) {
	provider = strings.Trim(strings.TrimSpace(provider), "/")
	rel := strings.TrimPrefix(path.Clean("/"+templatePath), "/")
	if provider == "" || strings.Contains(provider, "/") {
		return "", export.NewError(export.KindValidation, fmt.Sprintf("invalid resource provider %q", provider), nil)
	}
	if strings.TrimSpace(templatePath) == "" || rel == "" || rel == "." {
		return "", export.NewError(export.KindValidation, "template path is required", nil)
	}
	return path.Join(strings.Trim(r.Prefix, "/"), provider, r.templatePrefix(), rel), nil
}

func (r *Resolver) templatePrefix() string {
	if prefix := strings.Trim(strings.TrimSpace(r.TemplatePrefix), "/"); prefix != "" {
		return prefix
	}
	return DefaultTemplatePrefix
}
