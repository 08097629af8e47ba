package handler

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const maxPictureBytes = 2 << 20

var (
	errPictureTooLarge = errors.New("picture must be 2 MiB or smaller")
	errPictureType     = errors.New("picture must be a png, jpeg, gif or webp image")
)

var pictureExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// savePicture 校验上传的头像并保存到上传目录，返回可访问的 URL
func (a *API) savePicture(file *multipart.FileHeader) (string, error) {
	if file.Size > maxPictureBytes {
		return "", errPictureTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// 通过解码图片头判断类型，不信任客户端的 Content-Type
	_, format, err := image.DecodeConfig(src)
	if err != nil {
		return "", errPictureType
	}
	ext, ok := pictureExtensions[format]
	if !ok {
		return "", errPictureType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	// 创建上传目录
	dir := filepath.Join(a.uploadDir, "profile_images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// 生成唯一文件名
	name := fmt.Sprintf("%s-%s%s", a.now().Format("20060102"), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create picture file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, maxPictureBytes+1))
	if err != nil {
		return "", fmt.Errorf("write picture file: %w", err)
	}
	if written > maxPictureBytes {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", errPictureTooLarge
	}

	return a.uploadURL + "/profile_images/" + name, nil
}

// removePicture 删除 savePicture 写入的文件，失败只记录日志
func (a *API) removePicture(pictureURL string) {
	path := filepath.Join(a.uploadDir, "profile_images", filepath.Base(pictureURL))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.log.Warn("remove picture", zap.String("path", path), zap.Error(err))
	}
}
