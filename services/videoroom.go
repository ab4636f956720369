package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const dailyAPIURL = "https://api.daily.co/v1"

// VideoRoomClient creates Daily.co rooms for online pujas. Room creation is
// best effort; a booking is never failed over it.
type VideoRoomClient struct {
	APIKey string
	APIURL string

	client *http.Client
}

// Video is set at startup when a Daily API key is configured.
var Video *VideoRoomClient

func NewVideoRoomClient(apiKey string) *VideoRoomClient {
	return &VideoRoomClient{
		APIKey: apiKey,
		APIURL: dailyAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateRoom provisions a private room that expires a day after the booking.
func (v *VideoRoomClient) CreateRoom(name string, bookingDate string) (string, error) {
	if v == nil || v.APIKey == "" {
		return "", fmt.Errorf("video rooms not configured")
	}

	exp := time.Now().Add(48 * time.Hour)
	if d, err := time.Parse("2006-01-02", bookingDate); err == nil {
		exp = d.Add(48 * time.Hour)
	}

	payload := map[string]any{
		"name":    name,
		"privacy": "private",
		"properties": map[string]any{
			"exp":         exp.Unix(),
			"enable_chat": true,
		},
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, v.APIURL+"/rooms", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+v.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("daily rooms status %s: %s", resp.Status, raw)
	}

	var room struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &room); err != nil {
		return "", err
	}
	if room.URL == "" {
		return "", fmt.Errorf("room response missing url")
	}
	return room.URL, nil
}
