// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"phase-stego-backend/audio"
	"phase-stego-backend/models"
	"phase-stego-backend/stego"
)

type StegoHandler struct {
	audioDecoder   *audio.AudioDecoder
	config         models.StegoConfig
	coder          *stego.PhaseCoder
	maxUploadBytes int64
	logger         logrus.FieldLogger
}

func NewStegoHandler(config *models.StegoConfig, maxUploadBytes int64, logger logrus.FieldLogger) *StegoHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if config == nil {
		config = &models.StegoConfig{}
	}

	return &StegoHandler{
		audioDecoder:   audio.NewAudioDecoder(logger),
		config:         *config,
		coder:          stego.NewPhaseCoder(config, logger),
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Phase coding steganography API is running",
		"version": "1.0.0",
	})
}

func (h *StegoHandler) InsertMessage(c *gin.Context) {
	logger := h.requestLogger(c)

	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	coder, err := h.coderFor(c.PostForm("carrier_amplitude"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	audioData, audioHeader, err := readFormFile(c, "audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: "Audio file is required",
		})
		return
	}

	if !audio.IsSupported(audioHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: "Invalid audio file format. Only WAV, MP3 and FLAC files are supported",
		})
		return
	}

	message, err := h.readMessage(c)
	if err != nil {
		c.JSON(statusFor(err), models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid message: %v", err),
		})
		return
	}

	cover, metadata, err := h.audioDecoder.Decode(audioData, audioHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to decode audio file: %v", err),
		})
		return
	}

	capacity := stego.MaxMessageBytes(metadata.Frames)
	if len(message) > capacity {
		c.JSON(http.StatusRequestEntityTooLarge, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Secret message too large. Maximum capacity: %d bytes, required: %d bytes",
				capacity, len(message)),
		})
		return
	}

	result, err := coder.Embed(c.Request.Context(), cover, message)
	if err != nil {
		c.JSON(statusFor(err), models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to embed message: %v", err),
		})
		return
	}

	stegoAudio, err := h.audioDecoder.EncodeWAV(result.Buffer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to encode stego audio: %v", err),
		})
		return
	}

	psnr := audio.CalculatePSNR(cover.Mono().Samples, result.Buffer.Samples)
	quality := "ok"
	if !audio.ValidatePSNR(psnr, h.config.MinPSNR) {
		quality = "degraded"
		logger.WithFields(logrus.Fields{
			"psnr":     psnr,
			"min_psnr": h.config.MinPSNR,
		}).Warn("Stego output below PSNR threshold")
	}

	logger.WithFields(logrus.Fields{
		"file":           audioHeader.Filename,
		"message_bytes":  len(message),
		"segment_length": result.Plan.Length,
		"segments":       result.Plan.Count,
		"psnr":           psnr,
		"clipped":        result.Clipped,
	}).Info("Message embedded")

	baseFilename := strings.TrimSuffix(audioHeader.Filename, filepath.Ext(audioHeader.Filename))
	outputFilename := fmt.Sprintf("%s_stego.wav", baseFilename)

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))

	// Include metadata about the steganography operation
	c.Header("X-Stego-Method", "Phase Coding")
	c.Header("X-Stego-Bit-Count", strconv.Itoa(result.BitCount))
	c.Header("X-Stego-Segment-Length", strconv.Itoa(result.Plan.Length))
	c.Header("X-Stego-Segments", strconv.Itoa(result.Plan.Count))
	c.Header("X-Stego-Capacity", strconv.Itoa(capacity))
	c.Header("X-Stego-PSNR", strconv.FormatFloat(psnr, 'f', 2, 64))
	c.Header("X-Stego-Clipped", strconv.Itoa(result.Clipped))
	c.Header("X-Stego-Quality", quality)

	c.Data(http.StatusOK, "audio/wav", stegoAudio)
}

func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	logger := h.requestLogger(c)

	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	bitCount, err := parseBitCount(c.PostForm("bit_count"), c.PostForm("message_length"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	stegoData, stegoHeader, err := readFormFile(c, "stego_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: "Stego audio file is required",
		})
		return
	}

	if !audio.IsSupported(stegoHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: "Invalid audio file format. Only WAV, MP3 and FLAC files are supported",
		})
		return
	}

	buf, _, err := h.audioDecoder.Decode(stegoData, stegoHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to decode stego audio file: %v", err),
		})
		return
	}

	message, err := h.coder.Extract(c.Request.Context(), buf, bitCount)
	if err != nil {
		c.JSON(statusFor(err), models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to extract message: %v", err),
		})
		return
	}

	logger.WithFields(logrus.Fields{
		"file":      stegoHeader.Filename,
		"bits":      bitCount,
		"extracted": len(message),
	}).Info("Message extracted")

	if c.PostForm("as_text") == "true" {
		c.JSON(http.StatusOK, models.ExtractResponse{
			Success: true,
			Message: "Message extracted",
			Text:    stego.MessageText(message),
		})
		return
	}

	// Set headers for file download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", "attachment; filename=message.bin")

	c.Data(http.StatusOK, "application/octet-stream", message)
}

func (h *StegoHandler) Capacity(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	messageBytes := 0
	if v := c.PostForm("message_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, models.CapacityResponse{
				Success: false,
				Message: "Message length must be a non-negative integer",
			})
			return
		}
		messageBytes = n
	}

	audioData, audioHeader, err := readFormFile(c, "audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{
			Success: false,
			Message: "Audio file is required",
		})
		return
	}

	_, metadata, err := h.audioDecoder.Decode(audioData, audioHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.CapacityResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to decode audio file: %v", err),
		})
		return
	}

	report, err := stego.EstimateCapacity(metadata.Frames, messageBytes)
	if err != nil {
		c.JSON(statusFor(err), models.CapacityResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to estimate capacity: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, models.CapacityResponse{
		Success:          true,
		Samples:          report.AudioLength,
		SampleRate:       metadata.SampleRate,
		MaxMessageBytes:  report.MaxMessageBytes,
		AdvisorySegLen:   report.Advisory.Length,
		AdvisorySegments: report.Advisory.Count,
		MessageBytes:     report.MessageBytes,
		EncoderSegLen:    report.Encoder.Length,
		EncoderSegments:  report.Encoder.Count,
		EncodedSamples:   report.EncodedLength,
		Fits:             report.Fits,
	})
}

func (h *StegoHandler) CompareMessages(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.CompareResponse{
			Success: false,
			Message: fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	acc, err := compareText(req.Original, req.Extracted)
	if err != nil {
		c.JSON(statusFor(err), models.CompareResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.CompareResponse{
		Success:      true,
		BitErrors:    acc.BitErrors,
		TotalBits:    acc.TotalBits,
		BitErrorRate: acc.BitErrorRate,
		ExactMatch:   acc.ExactMatch,
	})
}

func compareText(original, extracted string) (stego.Accuracy, error) {
	a, err := stego.MessageFromText(original)
	if err != nil {
		return stego.Accuracy{}, err
	}
	b, err := stego.MessageFromText(extracted)
	if err != nil {
		return stego.Accuracy{}, err
	}
	return stego.Compare(a, b)
}

// coderFor returns the shared coder unless the request overrides the
// carrier amplitude.
func (h *StegoHandler) coderFor(amplitude string) (*stego.PhaseCoder, error) {
	if amplitude == "" {
		return h.coder, nil
	}

	v, err := strconv.ParseFloat(amplitude, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("Carrier amplitude must be a non-negative number")
	}

	config := h.config
	config.CarrierAmplitude = v
	config.NoCarrierFloor = v == 0
	return stego.NewPhaseCoder(&config, h.logger), nil
}

// readMessage takes the message from the "message" field, or from an
// uploaded "secret_file" when the field is empty.
func (h *StegoHandler) readMessage(c *gin.Context) ([]byte, error) {
	if text := c.PostForm("message"); text != "" {
		return stego.MessageFromText(text)
	}

	data, _, err := readFormFile(c, "secret_file")
	if err != nil {
		return nil, fmt.Errorf("%w: a message or secret file is required", stego.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: secret file is empty", stego.ErrInvalidInput)
	}
	return data, nil
}

func (h *StegoHandler) requestLogger(c *gin.Context) logrus.FieldLogger {
	return h.logger.WithField("request_id", c.GetString(RequestIDKey))
}

func readFormFile(c *gin.Context, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

// parseBitCount accepts an explicit bit count or a message length in bytes.
func parseBitCount(bits, length string) (int, error) {
	switch {
	case bits != "":
		n, err := strconv.Atoi(bits)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("Bit count must be a positive integer")
		}
		return n, nil
	case length != "":
		n, err := strconv.Atoi(length)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("Message length must be a positive integer")
		}
		return n * stego.BitsInByte, nil
	default:
		return 0, fmt.Errorf("Bit count or message length is required")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, stego.ErrCapacityExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, stego.ErrInvalidInput),
		errors.Is(err, stego.ErrGeometryMismatch),
		errors.Is(err, stego.ErrLengthMismatch),
		errors.Is(err, audio.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
