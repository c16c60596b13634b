// Package datalake implements the destination connector on Azure Data
// Lake Storage Gen2. Each run writes into a fresh timestamped batch
// directory under the configured base path; directory creation is
// idempotent and files overwrite by name, so repeated delivery of the
// same unit within one batch converges instead of erroring.
//
// Authentication uses a SAS token appended to the account's dfs
// endpoint. The filesystem (container) must already exist; Open
// verifies it before any upload is attempted.
package datalake

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/datalakeerror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/file"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/filesystem"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azdatalake/service"
	"go.uber.org/zap"

	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/errors"
	"github.com/lakeferry/lakeferry/pkg/logger"
	"github.com/lakeferry/lakeferry/pkg/tabular"
)

// batchTimestampLayout gives batch directories second granularity;
// runs started in the same second share a directory.
const batchTimestampLayout = "20060102_150405"

// Destination is an ADLS Gen2 destination connector
type Destination struct {
	cfg    *config.Config
	logger *zap.Logger

	service    *service.Client
	filesystem *filesystem.Client
}

// NewDestination creates a new data lake destination connector
func NewDestination(cfg *config.Config) (*Destination, error) {
	if cfg.Dest.Account == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "missing required property: destination account")
	}
	if cfg.Dest.Container == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "missing required property: destination container")
	}
	if cfg.Dest.Credential == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "missing required property: destination credential")
	}

	return &Destination{
		cfg:    cfg,
		logger: logger.With(zap.String("connector", "datalake")),
	}, nil
}

// Open builds the service client and verifies the configured
// filesystem exists and the credential is accepted. Both checks are
// preconditions for the whole run, so failures here are fatal kinds.
func (d *Destination) Open(ctx context.Context) error {
	svc, err := service.NewClientWithNoCredential(d.sasURL(), nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to build data lake service client")
	}
	d.service = svc
	d.filesystem = svc.NewFileSystemClient(d.cfg.Dest.Container)

	if _, err := d.filesystem.GetProperties(ctx, nil); err != nil {
		switch {
		case datalakeerror.HasCode(err, datalakeerror.FileSystemNotFound):
			return errors.Wrap(err, errors.ErrorTypeNotFound,
				fmt.Sprintf("destination filesystem %s does not exist", d.cfg.Dest.Container))
		case datalakeerror.HasCode(err, datalakeerror.AuthenticationFailed, datalakeerror.AuthorizationFailure):
			return errors.Wrap(err, errors.ErrorTypeAuthentication, "destination authentication failed")
		default:
			return errors.Wrap(err, errors.ErrorTypeConnection, "failed to verify destination filesystem")
		}
	}

	d.logger.Info("destination filesystem verified",
		zap.String("account", d.cfg.Dest.Account),
		zap.String("filesystem", d.cfg.Dest.Container))

	return nil
}

// EnsureBatchDirectory creates this run's timestamped directory under
// the configured base path. An already existing directory is treated
// as success so reruns within one second never crash on this step.
func (d *Destination) EnsureBatchDirectory(ctx context.Context) (string, error) {
	dir := BatchPath(d.cfg.Dest.Directory, time.Now())

	dirClient := d.filesystem.NewDirectoryClient(dir)
	if _, err := dirClient.Create(ctx, nil); err != nil {
		if datalakeerror.HasCode(err, datalakeerror.PathAlreadyExists) {
			d.logger.Info("batch directory already exists", zap.String("directory", dir))
			return dir, nil
		}
		return "", errors.Wrap(err, errors.ErrorTypeConnection,
			fmt.Sprintf("failed to create batch directory %s", dir))
	}

	d.logger.Info("batch directory created", zap.String("directory", dir))
	return dir, nil
}

// Upload writes the payload as {dir}/{unit}.csv. Create-then-upload
// overwrites any existing file of the same name.
func (d *Destination) Upload(ctx context.Context, dir, unit string, payload []byte) error {
	name := unitFileName(unit)

	fileClient, err := d.filesystem.NewDirectoryClient(dir).NewFileClient(name)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeUpload,
			fmt.Sprintf("failed to build file client for %s", name))
	}

	if _, err := fileClient.Create(ctx, nil); err != nil {
		return errors.Wrap(err, errors.ErrorTypeUpload,
			fmt.Sprintf("failed to create %s in %s", name, dir))
	}

	uploadOpts := &file.UploadBufferOptions{
		HTTPHeaders: &file.HTTPHeaders{
			ContentType: to.Ptr(tabular.ContentType),
		},
	}
	if err := fileClient.UploadBuffer(ctx, payload, uploadOpts); err != nil {
		return errors.Wrap(err, errors.ErrorTypeUpload,
			fmt.Sprintf("failed to upload %s to %s", name, dir))
	}

	d.logger.Info("payload uploaded",
		zap.String("path", path.Join(dir, name)),
		zap.Int("bytes", len(payload)))

	return nil
}

// Close releases the destination clients. The SDK clients are plain
// HTTP wrappers, so this only drops references.
func (d *Destination) Close(ctx context.Context) error {
	d.service = nil
	d.filesystem = nil
	return nil
}

// sasURL joins the service endpoint and the SAS token, tolerating a
// token pasted with its leading question mark.
func (d *Destination) sasURL() string {
	token := strings.TrimPrefix(d.cfg.Dest.Credential, "?")
	return fmt.Sprintf("%s?%s", d.cfg.Dest.ServiceURL(), token)
}

// BatchPath derives the destination directory for a run started at t:
// the configured base path plus a second-granularity UTC timestamp
// token. UTC keeps tokens monotonic across DST transitions.
func BatchPath(base string, t time.Time) string {
	return path.Join(base, t.UTC().Format(batchTimestampLayout))
}

func unitFileName(unit string) string {
	return unit + ".csv"
}
