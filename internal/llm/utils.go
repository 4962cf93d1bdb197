package llm

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// MaxVisionBytes is the largest image attached to a request.
const MaxVisionBytes = 8 * 1024 * 1024

// LowConfidenceThreshold matches the OCR stage's image confidence gate.
const LowConfidenceThreshold = 0.6

// ShouldAttachImage reports whether the label image should be sent alongside
// the OCR text, and returns it as a data URL.
func ShouldAttachImage(req ExtractRequest) (attach bool, dataURL, mimeType string) {
	attach = req.FilePath != "" &&
		constants.FileTypeForExt(filepath.Ext(req.FilePath)) == "IMAGE" &&
		req.PrepConfidence < LowConfidenceThreshold
	if !attach {
		return false, "", ""
	}

	if st, err := os.Stat(req.FilePath); err != nil || st.IsDir() || st.Size() > MaxVisionBytes {
		return false, "", ""
	}

	u, mt, err := readAsDataURL(req.FilePath)
	if err != nil {
		return false, "", ""
	}
	return true, u, mt
}

func readAsDataURL(path string) (string, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	mt := mime.TypeByExtension("." + ext)
	if mt == "" {
		switch ext {
		case "jpg", "jpeg":
			mt = "image/jpeg"
		case "png":
			mt = "image/png"
		case "tif", "tiff":
			mt = "image/tiff"
		case "webp":
			mt = "image/webp"
		default:
			mt = "application/octet-stream"
		}
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b), mt, nil
}
