package storage

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Cloudinary configuration via environment variables
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET, CLOUDINARY_FOLDER (optional)

func InitializeCloudinary() {}

// UploadBase64Image uploads a base64 data URL (or raw base64 payload) and
// returns the hosted URL, or "" on failure. Venue photos go through here.
func UploadBase64Image(base64ImageSrc string, publicID string) map[string]string {
	if base64ImageSrc == "" {
		fmt.Printf("ERROR: Empty base64 image\n")
		return map[string]string{"url": ""}
	}

	i := strings.Index(base64ImageSrc, ",")
	payload := base64ImageSrc
	if i != -1 {
		payload = base64ImageSrc[i+1:]
	}

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		fmt.Printf("ERROR: Missing Cloudinary env vars\n")
		return map[string]string{"url": ""}
	}

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/upload"

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+payload)
	form.Add("api_key", apiKey)

	finalPublicID := publicID
	if folder != "" {
		finalPublicID = folder + "/" + publicID
	}
	if finalPublicID != "" {
		form.Add("public_id", finalPublicID)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form.Add("timestamp", timestamp)

	// Cloudinary signed upload requires SHA1 over the sorted params + secret
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))
	form.Add("signature", signature)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		fmt.Printf("ERROR: Failed to create request: %v\n", err)
		return map[string]string{"url": ""}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("ERROR: HTTP request failed: %v\n", err)
		return map[string]string{"url": ""}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Printf("ERROR: Failed to read response: %v\n", err)
		return map[string]string{"url": ""}
	}

	if res.StatusCode != 200 {
		fmt.Printf("ERROR: upload failed with status %d: %s\n", res.StatusCode, string(body))
		return map[string]string{"url": ""}
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &cloudRes); err != nil {
		fmt.Printf("ERROR: Failed to parse JSON: %v\n", err)
		return map[string]string{"url": ""}
	}

	if cloudRes.Error.Message != "" {
		fmt.Printf("ERROR: Cloudinary error: %s\n", cloudRes.Error.Message)
		return map[string]string{"url": ""}
	}

	urlOut := cloudRes.SecureURL
	if urlOut == "" {
		urlOut = cloudRes.URL
	}
	return map[string]string{"url": urlOut}
}

// DeleteImage removes a previously uploaded venue image by its Cloudinary URL.
func DeleteImage(imageURL string) bool {
	if !strings.Contains(imageURL, "res.cloudinary.com") {
		fmt.Printf("ERROR: Not a Cloudinary URL: %s\n", imageURL)
		return false
	}

	parts := strings.Split(imageURL, "/")
	if len(parts) < 2 {
		fmt.Printf("ERROR: Invalid Cloudinary URL format: %s\n", imageURL)
		return false
	}
	lastPart := parts[len(parts)-1]
	publicID := strings.Split(lastPart, ".")[0]

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	folder := os.Getenv("CLOUDINARY_FOLDER")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		fmt.Printf("ERROR: Missing Cloudinary env vars\n")
		return false
	}

	finalPublicID := publicID
	if folder != "" {
		finalPublicID = folder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signatureString := fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, apiSecret)
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(signatureString)))

	form := url.Values{}
	form.Add("public_id", finalPublicID)
	form.Add("api_key", apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", signature)

	endpoint := "https://api.cloudinary.com/v1_1/" + cloudName + "/image/destroy"
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		fmt.Printf("ERROR: Failed to create deletion request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("ERROR: Deletion request failed: %v\n", err)
		return false
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Printf("ERROR: Failed to read deletion response: %v\n", err)
		return false
	}

	if res.StatusCode != 200 {
		fmt.Printf("ERROR: Deletion failed with status %d: %s\n", res.StatusCode, string(body))
		return false
	}

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		fmt.Printf("ERROR: Failed to parse deletion response: %v\n", err)
		return false
	}
	if deleteRes.Error.Message != "" || deleteRes.Result != "ok" {
		fmt.Printf("ERROR: Cloudinary deletion failed: %s %s\n", deleteRes.Result, deleteRes.Error.Message)
		return false
	}
	return true
}
