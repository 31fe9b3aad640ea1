package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"github.com/JaimeStill/folio/pkg/lifecycle"
)

// sasClockSkew backdates SAS start times to tolerate clock drift.
const sasClockSkew = 5 * time.Minute

type azure struct {
	client    *azblob.Client
	buckets   []string
	sharedKey bool
	logger    *slog.Logger
}

func newAzure(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.Azure.ConnectionString != "" {
		client, err := azblob.NewClientFromConnectionString(cfg.Azure.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return &azure{
			client:    client,
			buckets:   cfg.Buckets,
			sharedKey: true,
			logger:    logger,
		}, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create azure credential: %w", err)
	}

	client, err := azblob.NewClient(cfg.Azure.AccountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:  client,
		buckets: cfg.Buckets,
		logger:  logger,
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		for _, bucket := range a.buckets {
			_, err := a.client.CreateContainer(lc.Context(), bucket, nil)
			if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "container", bucket, "error", err)
				continue
			}
			a.logger.Info("storage container ready", "container", bucket)
		}
	})

	return nil
}

func (a *azure) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := ValidateKey(bucket, key); err != nil {
		return false, err
	}

	_, err := a.blobClient(bucket, key).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s/%s: %w", bucket, key, err)
	}

	return true, nil
}

func (a *azure) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ValidateKey(bucket, key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, bucket, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s/%s: %w", bucket, key, err)
	}

	return data, nil
}

func (a *azure) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := ValidateKey(bucket, key); err != nil {
		return err
	}

	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadBuffer(ctx, bucket, key, data, opts); err != nil {
		return fmt.Errorf("upload blob %s/%s: %w", bucket, key, err)
	}

	return nil
}

func (a *azure) Delete(ctx context.Context, bucket, key string) error {
	if err := ValidateKey(bucket, key); err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, bucket, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s/%s: %w", bucket, key, err)
	}

	return nil
}

func (a *azure) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	if err := ValidateKey(bucket, prefix); err != nil {
		return 0, err
	}

	pager := a.client.NewListBlobsFlatPager(bucket, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	deleted := 0
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("list blobs %s/%s: %w", bucket, prefix, err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			if _, err := a.client.DeleteBlob(ctx, bucket, *item.Name, nil); err != nil {
				if bloberror.HasCode(err, bloberror.BlobNotFound) {
					continue
				}
				return deleted, fmt.Errorf("delete blob %s/%s: %w", bucket, *item.Name, err)
			}
			deleted++
		}
	}

	return deleted, nil
}

func (a *azure) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if err := ValidateKey(bucket, key); err != nil {
		return "", err
	}

	bc := a.blobClient(bucket, key)
	expiry := time.Now().UTC().Add(ttl)

	if a.sharedKey {
		u, err := bc.GetSASURL(sas.BlobPermissions{Read: true}, expiry, nil)
		if err != nil {
			return "", fmt.Errorf("sign blob url %s/%s: %w", bucket, key, err)
		}
		return u, nil
	}

	start := time.Now().UTC().Add(-sasClockSkew)
	info := service.KeyInfo{
		Start:  to.Ptr(start.Format(sas.TimeFormat)),
		Expiry: to.Ptr(expiry.Format(sas.TimeFormat)),
	}

	udc, err := a.client.ServiceClient().GetUserDelegationCredential(ctx, info, nil)
	if err != nil {
		return "", fmt.Errorf("get user delegation credential: %w", err)
	}

	qp, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     start,
		ExpiryTime:    expiry,
		Permissions:   to.Ptr(sas.BlobPermissions{Read: true}).String(),
		ContainerName: bucket,
		BlobName:      key,
	}.SignWithUserDelegation(udc)
	if err != nil {
		return "", fmt.Errorf("sign blob url %s/%s: %w", bucket, key, err)
	}

	return bc.URL() + "?" + qp.Encode(), nil
}

func (a *azure) blobClient(bucket, key string) *blob.Client {
	return a.client.
		ServiceClient().
		NewContainerClient(bucket).
		NewBlobClient(key)
}
