/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
)

// registryPrefix is where GetPathForDbid/PutPathForDbid store the dbid ->
// object-path registration (DESIGN.md Open Question 3: not specified at
// the byte level by spec.md, so this core fixes one convention).
const registryPrefix = ".dbid/"

// S3Config configures an S3Store. It is a plain exported struct the caller
// fills in, the same shape as storage/persistence-s3.go's S3Factory.
type S3Config struct {
	AccessKeyID     string // AWS or S3-compatible access key
	SecretAccessKey string // AWS or S3-compatible secret key
	Region          string // AWS region (e.g. "us-east-1")
	Endpoint        string // custom endpoint for S3-compatible storage (MinIO, etc.)
	ForcePathStyle  bool   // required for MinIO and most non-AWS endpoints
}

// S3Store implements ObjectStore against AWS S3 (or an S3-compatible
// endpoint). It is the only production ObjectStore this core ships, per
// spec.md §4.D's "if cloud type is unsupported ... fail not-supported".
type S3Store struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

// NewS3Store constructs a lazily-connected S3Store.
func NewS3Store(cfg S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) ensureClient() (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	ctx := context.Background()
	var opts []func(*config.LoadOptions) error
	if s.cfg.Region != "" {
		opts = append(opts, config.WithRegion(s.cfg.Region))
	}
	if s.cfg.AccessKeyID != "" && s.cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errIO("load AWS config", err)
	}

	var s3Opts []func(*s3.Options)
	if s.cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(s.cfg.Endpoint) })
	}
	if s.cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	s.client = s3.NewFromConfig(awsCfg, s3Opts...)
	return s.client, nil
}

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	return false
}

func (s *S3Store) Exists(bucket, path string) (bool, error) {
	client, err := s.ensureClient()
	if err != nil {
		return false, err
	}
	_, err = client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(bucket), Key: aws.String(path),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errIO(fmt.Sprintf("head s3://%s/%s", bucket, path), err)
	}
	return true, nil
}

func (s *S3Store) GetBytes(bucket, path string) ([]byte, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}
	resp, err := client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(bucket), Key: aws.String(path),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errNotFound(fmt.Sprintf("s3://%s/%s", bucket, path), err)
		}
		return nil, errIO(fmt.Sprintf("get s3://%s/%s", bucket, path), err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errIO(fmt.Sprintf("read body s3://%s/%s", bucket, path), err)
	}
	return data, nil
}

func (s *S3Store) Get(bucket, path string, dst LocalFS, localName string) error {
	data, err := s.GetBytes(bucket, path)
	if err != nil {
		return err
	}
	return dst.WriteFile(localName, data)
}

func (s *S3Store) PutBytes(data []byte, bucket, path string) error {
	client, err := s.ensureClient()
	if err != nil {
		return err
	}
	_, err = client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(bucket), Key: aws.String(path), Body: bytes.NewReader(data),
	})
	if err != nil {
		return errIO(fmt.Sprintf("put s3://%s/%s", bucket, path), err)
	}
	return nil
}

func (s *S3Store) Put(src LocalFS, localName string, bucket, path string) error {
	data, err := src.ReadFile(localName)
	if err != nil {
		return err
	}
	return s.PutBytes(data, bucket, path)
}

func (s *S3Store) Copy(srcBucket, srcPath, dstBucket, dstPath string) error {
	client, err := s.ensureClient()
	if err != nil {
		return err
	}
	source := fmt.Sprintf("%s/%s", srcBucket, srcPath)
	_, err = client.CopyObject(context.Background(), &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstPath),
		CopySource: aws.String(source),
	})
	if err != nil {
		return errIO(fmt.Sprintf("copy s3://%s to s3://%s/%s", source, dstBucket, dstPath), err)
	}
	return nil
}

func (s *S3Store) List(bucket, prefix string) ([]string, error) {
	client, err := s.ensureClient()
	if err != nil {
		return nil, err
	}
	var out []string
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket), Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, errIO(fmt.Sprintf("list s3://%s/%s", bucket, prefix), err)
		}
		for _, obj := range page.Contents {
			out = append(out, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	return out, nil
}

func (s *S3Store) GetPathForDbid(bucket, dbid string) (string, error) {
	data, err := s.GetBytes(bucket, registryPrefix+dbid)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *S3Store) PutPathForDbid(bucket, dbid, path string) error {
	return s.PutBytes([]byte(path), bucket, registryPrefix+dbid)
}
