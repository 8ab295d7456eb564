package explorer

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/services"
)

// Upload stores size bytes from r at key. An empty contentType is left to
// the store's default.
func (e *Explorer) Upload(ctx context.Context, sess *services.Session, bucket, key string, r io.Reader, size int64, contentType string) (Node, error) {
	if key == "" || key[len(key)-1] == '/' {
		return Node{}, errs.Newf(errs.KindInvalidInput, "invalid object key %q", key)
	}

	info, err := sess.Client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Node{}, err
	}
	e.log.Info().Str("bucket", bucket).Str("key", key).Int64("size", info.Size).Msg("uploaded")
	return Node{Kind: KindFile, Name: fileName(key), Key: key, Size: info.Size, ContentType: contentType}, nil
}

// UploadFile uploads a local file into prefix under its base name. The
// content type is sniffed from the file contents.
func (e *Explorer) UploadFile(ctx context.Context, sess *services.Session, bucket, prefix, localPath string) (Node, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Node{}, errs.Wrap(errs.KindLocalIO, "failed to open "+localPath, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Node{}, errs.Wrap(errs.KindLocalIO, "failed to stat "+localPath, err)
	}
	if st.IsDir() {
		return Node{}, errs.Newf(errs.KindInvalidInput, "%s is a directory", localPath)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return Node{}, errs.Wrap(errs.KindLocalIO, "failed to read "+localPath, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Node{}, errs.Wrap(errs.KindLocalIO, "failed to read "+localPath, err)
	}

	key := NormalizePrefix(prefix) + filepath.Base(localPath)
	return e.Upload(ctx, sess, bucket, key, f, st.Size(), mt.String())
}

// Download streams key into w and returns the number of bytes written.
func (e *Explorer) Download(ctx context.Context, sess *services.Session, bucket, key string, w io.Writer) (int64, error) {
	rc, _, err := sess.Client.GetObjectReader(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.Copy(w, rc)
	if err != nil {
		return n, errs.Wrap(errs.KindLocalIO, "failed to write "+key, err)
	}
	return n, nil
}

// DownloadFile writes key to localPath. When localPath is a directory the
// object's base name is used inside it. A failed transfer leaves no file.
func (e *Explorer) DownloadFile(ctx context.Context, sess *services.Session, bucket, key, localPath string) (string, int64, error) {
	if st, err := os.Stat(localPath); err == nil && st.IsDir() {
		localPath = filepath.Join(localPath, fileName(key))
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".ironshelf-*")
	if err != nil {
		return "", 0, errs.Wrap(errs.KindLocalIO, "failed to create "+localPath, err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	n, err := e.Download(ctx, sess, bucket, key, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = errs.Wrap(errs.KindLocalIO, "failed to write "+localPath, cerr)
	}
	if err != nil {
		cleanup()
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		cleanup()
		return "", 0, errs.Wrap(errs.KindLocalIO, "failed to write "+localPath, err)
	}
	e.log.Info().Str("bucket", bucket).Str("key", key).Str("path", localPath).Int64("bytes", n).Msg("downloaded")
	return localPath, n, nil
}

// Rename copies from to to and deletes from only after the copy
// succeeded. Folders cannot be renamed.
func (e *Explorer) Rename(ctx context.Context, sess *services.Session, bucket, from, to string) error {
	switch {
	case from == "" || to == "":
		return errs.New(errs.KindInvalidInput, "source and destination keys are required")
	case from[len(from)-1] == '/' || to[len(to)-1] == '/':
		return errs.New(errs.KindInvalidInput, "folders cannot be renamed")
	case from == to:
		return nil
	}

	_, err := sess.Client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: to},
		minio.CopySrcOptions{Bucket: bucket, Object: from},
	)
	if err != nil {
		return err
	}

	if err := sess.Client.RemoveObject(ctx, bucket, from, minio.RemoveObjectOptions{}); err != nil {
		// Both keys exist now; report it rather than undo the copy.
		return errs.Wrap(errs.KindPartialFailure, "copied to "+to+" but failed to delete "+from, err)
	}
	e.log.Info().Str("bucket", bucket).Str("from", from).Str("to", to).Msg("renamed")
	return nil
}

// RenameInPlace renames the file at key to newName within the same folder.
func (e *Explorer) RenameInPlace(ctx context.Context, sess *services.Session, bucket, key, newName string) (string, error) {
	if err := validSegment("file", newName); err != nil {
		return "", err
	}
	to := Parent(key) + newName
	if err := e.Rename(ctx, sess, bucket, key, to); err != nil {
		return "", err
	}
	return to, nil
}
