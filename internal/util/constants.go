package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimePDF       = "application/pdf"
	MimePlainText = "text/plain"

	MaxDocumentSize int64 = 10 * 1024 * 1024
)

var AllowedDocumentTypes = []string{MimePDF, MimePlainText}
