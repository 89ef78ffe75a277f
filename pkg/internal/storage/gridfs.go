package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridStore keeps rental images in a GridFS bucket.
type GridStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

func NewGridStore(ctx context.Context) (*GridStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(viper.GetString("mongo.uri")))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	bucket, err := gridfs.NewBucket(
		client.Database(viper.GetString("mongo.database")),
		options.GridFSBucket().SetName("rental_images"),
	)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &GridStore{client: client, bucket: bucket}, nil
}

func (v *GridStore) Put(ctx context.Context, filename, contentType string, r io.Reader) (string, int64, error) {
	stream, err := v.bucket.OpenUploadStream(
		filename,
		options.GridFSUpload().SetMetadata(bson.D{{Key: "content_type", Value: contentType}}),
	)
	if err != nil {
		return "", 0, err
	}
	_ = stream.SetWriteDeadline(deadlineOf(ctx))

	size, err := io.Copy(stream, r)
	if err != nil {
		_ = stream.Abort()
		return "", 0, err
	}
	if err := stream.Close(); err != nil {
		return "", 0, err
	}

	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return "", 0, fmt.Errorf("unexpected gridfs file id %v", stream.FileID)
	}
	return id.Hex(), size, nil
}

func (v *GridStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	stream, err := v.bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrBlobNotFound
	} else if err != nil {
		return nil, err
	}
	_ = stream.SetReadDeadline(deadlineOf(ctx))
	return stream, nil
}

func (v *GridStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	return v.bucket.DeleteContext(ctx, oid)
}

func (v *GridStore) Close(ctx context.Context) error {
	return v.client.Disconnect(ctx)
}
