package utility

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"film_camp/config"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	firebaseApp    *firebase.App
	firebaseAuth   *auth.Client
	firebaseBucket *gcs.BucketHandle
)

// resolveCredentialsPath trả về đường dẫn tuyệt đối tới file service account.
// Đường dẫn tương đối được tính từ thư mục chứa config/env.
func resolveCredentialsPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "config", "env")); err == nil {
			return filepath.Join(dir, p), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("không tìm thấy thư mục gốc chứa config/env")
		}
		dir = parent
	}
}

// InitFirebase khởi tạo Firebase Admin SDK: Auth client và bucket Storage.
// Khi dùng emulator, SDK tự đọc FIREBASE_AUTH_EMULATOR_HOST / STORAGE_EMULATOR_HOST (config.NewConfig đã set)
// và không cần file credentials.
func InitFirebase(ctx context.Context, cfg *config.Configuration) error {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsPath != "" && !cfg.UseFirebaseEmulator {
		path, err := resolveCredentialsPath(cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("firebase credentials file not found: %s", path)
		}
		opts = append(opts, option.WithCredentialsFile(path))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		return fmt.Errorf("failed to get Firebase Storage client: %w", err)
	}
	bucket, err := storageClient.Bucket(cfg.FirebaseStorageBucket)
	if err != nil {
		return fmt.Errorf("failed to get Firebase Storage bucket: %w", err)
	}

	firebaseApp = app
	firebaseAuth = authClient
	firebaseBucket = bucket
	return nil
}

// GetFirebaseAuth trả về Firebase Auth client (nil nếu chưa InitFirebase)
func GetFirebaseAuth() *auth.Client {
	return firebaseAuth
}

// GetFirebaseBucket trả về bucket Storage (nil nếu chưa InitFirebase)
func GetFirebaseBucket() *gcs.BucketHandle {
	return firebaseBucket
}
