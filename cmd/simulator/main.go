package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Location is a geographic point used for simulated breakdowns.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// RequestPayload is the body sent to POST /api/v1/requests.
type RequestPayload struct {
	ClientID    string   `json:"clientId"`
	Type        string   `json:"type"`
	Location    Location `json:"location"`
	Description string   `json:"description,omitempty"`
	VehicleInfo string   `json:"vehicleInfo,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

// Cities for realistic breakdown spots
var cities = []Location{
	{Lat: 19.4326, Lng: -99.1332, Address: "Ciudad de México"},
	{Lat: 20.6597, Lng: -103.3496, Address: "Guadalajara"},
	{Lat: 25.6866, Lng: -100.3161, Address: "Monterrey"},
	{Lat: 19.0414, Lng: -98.2063, Address: "Puebla"},
	{Lat: 32.5149, Lng: -117.0382, Address: "Tijuana"},
	{Lat: 20.9674, Lng: -89.5926, Address: "Mérida"},
	{Lat: 20.5888, Lng: -100.3899, Address: "Querétaro"},
	{Lat: 21.1619, Lng: -86.8515, Address: "Cancún"},
	{Lat: 21.8853, Lng: -102.2916, Address: "Aguascalientes"},
	{Lat: 19.2433, Lng: -103.7250, Address: "Colima"},
}

var serviceTypes = []string{"towing", "battery", "tire", "fuel", "lockout"}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rand.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lng: base.Lng + dLng, Address: base.Address}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, 3000)
}

var (
	apiKey    string
	authToken string
)

func keyedRequest(method, url string, body *bytes.Buffer) (*http.Response, error) {
	var reader *bytes.Buffer
	if body == nil {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = body
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func providerRequest(url string, payload any) (*http.Response, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

type createResponse struct {
	Success bool `json:"success"`
	Data    struct {
		RequestID string `json:"requestId"`
		Status    string `json:"status"`
	} `json:"data"`
}

func requestEstimate(apiURL, serviceType string, loc Location) {
	body := map[string]any{
		"serviceType": serviceType,
		"location":    loc,
		"vehicleType": "sedan",
	}
	data, _ := json.Marshal(body)
	resp, err := keyedRequest(http.MethodPost, apiURL+"/api/v1/estimates", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to request estimate")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"service_type": serviceType, "status": resp.Status}).Info("Requested estimate")
}

func createRequest(apiURL, clientID string) (string, error) {
	serviceType := serviceTypes[rand.Intn(len(serviceTypes))]
	loc := randomLocation()

	requestEstimate(apiURL, serviceType, loc)

	makes := []string{"Nissan", "Volkswagen", "Chevrolet", "Toyota", "Kia"}
	models := []string{"Versa", "Jetta", "Aveo", "Corolla", "Rio"}

	payload := RequestPayload{
		ClientID:    clientID,
		Type:        serviceType,
		Location:    loc,
		Description: fmt.Sprintf("Simulated %s breakdown near %s", serviceType, loc.Address),
		VehicleInfo: fmt.Sprintf("%s %s %d", makes[rand.Intn(len(makes))], models[rand.Intn(len(models))], 2015+rand.Intn(10)),
		Priority:    []string{"low", "normal", "high"}[rand.Intn(3)],
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := keyedRequest(http.MethodPost, apiURL+"/api/v1/requests", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("request creation failed with status: %d", resp.StatusCode)
	}

	var result createResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Data.RequestID == "" {
		return "", fmt.Errorf("missing request ID in response")
	}

	log.WithFields(log.Fields{
		"request_id":   result.Data.RequestID,
		"service_type": serviceType,
		"city":         loc.Address,
	}).Info("Created service request")

	return result.Data.RequestID, nil
}

func searchProviders(apiURL string, loc Location) {
	url := fmt.Sprintf("%s/api/v1/providers?lat=%.4f&lng=%.4f&radius=15", apiURL, loc.Lat, loc.Lng)
	resp, err := keyedRequest(http.MethodGet, url, nil)
	if err != nil {
		log.WithError(err).Error("Failed to search providers")
		return
	}
	defer resp.Body.Close()
	log.WithField("status", resp.Status).Info("Searched nearby providers")
}

func cancelRequest(apiURL, requestID string) {
	body, _ := json.Marshal(map[string]string{"reason": "Simulated client changed their mind"})
	resp, err := keyedRequest(http.MethodPost, apiURL+"/api/v1/requests/"+requestID+"/cancel", bytes.NewBuffer(body))
	if err != nil {
		log.WithError(err).Error("Failed to cancel request")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"request_id": requestID, "status": resp.Status}).Info("Cancelled request")
}

// driveProviderFlow walks a request through assign, start and complete
// using the provider dashboard endpoints. Requires SIM_AUTH_TOKEN to be
// a valid provider session.
func driveProviderFlow(apiURL, requestID string, pause time.Duration) {
	steps := []struct {
		path    string
		payload any
	}{
		{"/assign", nil},
		{"/start", nil},
		{"/complete", map[string]any{
			"finalPrice": 200 + rand.Float64()*800,
			"rating":     3 + rand.Intn(3),
		}},
	}
	for _, step := range steps {
		time.Sleep(pause)
		resp, err := providerRequest(apiURL+"/api/provider/requests/"+requestID+step.path, step.payload)
		if err != nil {
			log.WithError(err).WithField("step", step.path).Error("Provider flow step failed")
			return
		}
		resp.Body.Close()
		log.WithFields(log.Fields{
			"request_id": requestID,
			"step":       step.path,
			"status":     resp.Status,
		}).Info("Provider flow step")
		if resp.StatusCode >= 400 {
			return
		}
	}
}

func simulateClient(apiURL string, interval, pause time.Duration) {
	clientID := uuid.NewString()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		searchProviders(apiURL, randomLocation())

		requestID, err := createRequest(apiURL, clientID)
		if err != nil {
			log.WithError(err).Error("Failed to create request")
			continue
		}

		switch {
		case rand.Float64() < 0.2:
			// a fifth of clients bail out before help arrives
			time.Sleep(pause)
			cancelRequest(apiURL, requestID)
		case authToken != "":
			driveProviderFlow(apiURL, requestID, pause)
		}
	}
}

func main() {
	apiKey = os.Getenv("SIM_API_KEY")
	if apiKey == "" {
		log.Fatal("SIM_API_KEY is required to reach the public API")
	}
	// Optional provider JWT for walking requests through the lifecycle
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	clientCount := 5
	if val := os.Getenv("SIM_CLIENTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			clientCount = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	interval := 15 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}
	pause := 2 * time.Second

	log.WithFields(log.Fields{
		"clients":  clientCount,
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting roadside assistance simulation")

	for i := 0; i < clientCount; i++ {
		go simulateClient(apiURL, interval, pause)
	}

	select {} // Block forever
}
