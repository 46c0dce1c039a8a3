package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// FileClient — клиент файлового сервиса. Хранение файлов — его забота,
// движок оперирует только полученным путем.
type FileClient interface {
	UploadFile(ctx context.Context, fileContent []byte, fileName string) (*UploadResponse, error)
	DeleteFile(ctx context.Context, filePath string) error
}

type fileClient struct {
	baseURL        string
	uploadEndpoint string
	timeout        time.Duration
	retryCount     int
	retryDelay     time.Duration
	client         *http.Client
	logger         zerolog.Logger
}

type UploadResponse struct {
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func NewFileClient(baseURL, uploadEndpoint string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) FileClient {
	return &fileClient{
		baseURL:        baseURL,
		uploadEndpoint: uploadEndpoint,
		timeout:        timeout,
		retryCount:     retryCount,
		retryDelay:     retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *fileClient) UploadFile(ctx context.Context, fileContent []byte, fileName string) (*UploadResponse, error) {
	// Создаем multipart запрос
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, bytes.NewReader(fileContent)); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	writer.Close()

	body := buf.Bytes()

	// Выполняем запрос с повторными попытками
	var resp *http.Response
	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying file upload")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+c.uploadEndpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, lastErr = c.client.Do(req)
		if lastErr == nil && resp.StatusCode == http.StatusOK {
			break
		}

		if resp != nil {
			resp.Body.Close()
			if lastErr == nil {
				lastErr = fmt.Errorf("file service returned status %d", resp.StatusCode)
			}
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to upload file after %d attempts: %w", c.retryCount+1, lastErr)
	}
	defer resp.Body.Close()

	var uploadResp UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Info().
		Str("file_path", uploadResp.FilePath).
		Int64("size", uploadResp.Size).
		Msg("File uploaded successfully")

	return &uploadResp, nil
}

func (c *fileClient) DeleteFile(ctx context.Context, filePath string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+c.uploadEndpoint+"?path="+filePath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("file service returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
