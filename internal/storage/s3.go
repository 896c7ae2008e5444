package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	Prefix          string `toml:"prefix"`
	PublicURL       string `toml:"public-url"`
	AccessKeyID     string `toml:"access-key-id"`
	SecretAccessKey string `toml:"-"`
}

func (o *S3Options) FillDefaults() {
	if o.Region == "" {
		o.Region = "auto"
	}
	if o.Prefix == "" {
		o.Prefix = "images/"
	}
	if !strings.HasSuffix(o.Prefix, "/") {
		o.Prefix += "/"
	}
	o.PublicURL = strings.TrimSuffix(o.PublicURL, "/")
}

// S3 keeps uploads in an S3-compatible bucket (AWS, Cloudflare R2, MinIO).
type S3 struct {
	client *s3.Client
	o      S3Options
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	o.FillDefaults()
	if o.Bucket == "" {
		return nil, fmt.Errorf("no bucket specified")
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return &S3{client: client, o: o}, nil
}

func (s *S3) file(key string) File {
	name := strings.TrimPrefix(key, s.o.Prefix)
	return File{Name: name, Path: s.o.PublicURL + "/" + key}
}

func (s *S3) Save(ctx context.Context, originalName string, r io.Reader, contentType string) (File, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	key := s.o.Prefix + StoredName(time.Now(), originalName)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.o.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return File{}, fmt.Errorf("put object: %w", err)
	}
	return s.file(key), nil
}

func (s *S3) List(ctx context.Context) ([]File, error) {
	var files []File
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.o.Bucket),
		Prefix: aws.String(s.o.Prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			files = append(files, s.file(aws.ToString(obj.Key)))
		}
	}
	return files, nil
}
