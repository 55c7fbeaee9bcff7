package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notes-app/src/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"
)

const objectPrefix = "logs/"

// LogUploader ローテーション済みのログファイルをS3へ退避する
type LogUploader struct {
	s3Client   s3iface.S3API
	bucket     string
	activeFile string
	logger     *logrus.Logger
	now        func() time.Time
}

// NewLogUploader S3アップローダーを作成
func NewLogUploader(cfg config.S3Config, activeFile string, logger *logrus.Logger) (*LogUploader, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true), // MinIOなどのS3互換ストレージ用
	}

	// エンドポイントが指定されている場合（MinIOなど）
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの作成に失敗: %w", err)
	}

	return NewLogUploaderWithClient(s3.New(sess), cfg.Bucket, activeFile, logger), nil
}

// NewLogUploaderWithClient 既存のS3クライアントでアップローダーを作成
func NewLogUploaderWithClient(client s3iface.S3API, bucket, activeFile string, logger *logrus.Logger) *LogUploader {
	return &LogUploader{
		s3Client:   client,
		bucket:     bucket,
		activeFile: activeFile,
		logger:     logger,
		now:        time.Now,
	}
}

// UploadLogFile ログファイルをS3にアップロード
func (u *LogUploader) UploadLogFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	defer file.Close()

	fileName := filepath.Base(filePath)
	objectKey := objectPrefix + fileName

	_, err = u.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]*string{
			"upload-time": aws.String(u.now().Format(time.RFC3339)),
			"source":      aws.String("notes-app"),
		},
	})
	if err != nil {
		return fmt.Errorf("S3アップロードに失敗: %w", err)
	}

	u.logger.WithFields(logrus.Fields{
		"file":   fileName,
		"bucket": u.bucket,
		"key":    objectKey,
	}).Info("ログファイルをS3にアップロードしました")
	return nil
}

// UploadOldLogs 古いローテーション済みログをアップロードして削除し、件数を返す。
// 書き込み中のファイルは対象外
func (u *LogUploader) UploadOldLogs(ctx context.Context, logDir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return 0, fmt.Errorf("ログディレクトリの読み取りに失敗: %w", err)
	}

	cutoff := u.now().Add(-maxAge)
	uploaded := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == u.activeFile || !strings.HasSuffix(name, ".log") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}

		info, err := entry.Info()
		if err != nil {
			u.logger.WithError(err).WithField("file", name).Error("ファイル情報の取得に失敗")
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		filePath := filepath.Join(logDir, name)
		if err := u.UploadLogFile(ctx, filePath); err != nil {
			u.logger.WithError(err).WithField("file", name).Error("ログファイルのアップロードに失敗")
			continue
		}
		uploaded++

		if err := os.Remove(filePath); err != nil {
			u.logger.WithError(err).WithField("file", name).Error("ローカルファイルの削除に失敗")
		}
	}

	return uploaded, nil
}

// StartPeriodicUpload ctxが終了するまで定期的にアップロードする
func (u *LogUploader) StartPeriodicUpload(ctx context.Context, logDir string, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := u.UploadOldLogs(ctx, logDir, maxAge)
				if err != nil {
					u.logger.WithError(err).Error("定期的なログアップロードに失敗")
					continue
				}
				u.logger.WithField("uploaded", n).Debug("定期的なログアップロードが完了")
			}
		}
	}()

	u.logger.WithFields(logrus.Fields{
		"interval": interval,
		"maxAge":   maxAge,
	}).Info("定期的なログアップロードを開始しました")
}
