package kuaidi100

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		Customer: "TESTCUSTOMER",
		Key:      "testkey",
		BaseURL:  baseURL,
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClient(Config{Customer: "c", BaseURL: "https://example.com"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClient_Sign(t *testing.T) {
	client, err := NewClient(testConfig("https://example.com"))
	require.NoError(t, err)

	param := `{"com":"shunfeng","num":"SF123"}`
	want := strings.ToUpper(fmt.Sprintf("%x", md5.Sum([]byte(param+"TESTCUSTOMER"+"testkey"))))
	assert.Equal(t, want, client.sign(param))
}

func TestClient_Track_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/poll/query.do", r.URL.Path)
		assert.Equal(t, "TESTCUSTOMER", r.Form.Get("customer"))

		// The sign must cover exactly the param the server received
		param := r.Form.Get("param")
		wantSign := strings.ToUpper(fmt.Sprintf("%x", md5.Sum([]byte(param+"TESTCUSTOMER"+"testkey"))))
		assert.Equal(t, wantSign, r.Form.Get("sign"))

		var req TrackRequest
		require.NoError(t, json.Unmarshal([]byte(param), &req))
		assert.Equal(t, "shunfeng", req.CarrierCode)
		assert.Equal(t, "SF1234567890", req.TrackingNo)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"message": "ok",
			"state": "3",
			"status": "200",
			"com": "shunfeng",
			"nu": "SF1234567890",
			"data": [
				{"time": "2025-01-03 10:00:00", "context": "Delivered, signed by receiver"},
				{"time": "2025-01-02 08:30:00", "context": "Out for delivery"},
				{"time": "2025-01-01 20:00:00", "context": "Picked up"}
			]
		}`)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	result, err := client.Track(context.Background(), TrackRequest{
		CarrierCode: "shunfeng",
		TrackingNo:  "SF1234567890",
		Phone:       "13800001111",
	})
	require.NoError(t, err)

	assert.Equal(t, "shunfeng", result.CarrierCode)
	assert.Equal(t, "SF1234567890", result.TrackingNo)
	assert.Equal(t, "delivered", result.State)

	// Events are flipped to chronological order
	require.Len(t, result.Events, 3)
	assert.Equal(t, "Picked up", result.Events[0].Description)
	assert.Equal(t, "Delivered, signed by receiver", result.Events[2].Description)
}

func TestClient_Track_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message": "query exception", "status": "500", "data": []}`)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Track(context.Background(), TrackRequest{
		CarrierCode: "shunfeng",
		TrackingNo:  "SF1234567890",
	})
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "query exception")
}

func TestClient_Track_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Track(context.Background(), TrackRequest{
		CarrierCode: "shunfeng",
		TrackingNo:  "SF1234567890",
	})
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestClient_Track_Validation(t *testing.T) {
	client, err := NewClient(testConfig("https://example.com"))
	require.NoError(t, err)

	_, err = client.Track(context.Background(), TrackRequest{CarrierCode: "shunfeng"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.Track(context.Background(), TrackRequest{TrackingNo: "SF1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.Track(context.Background(), TrackRequest{CarrierCode: "nosuchcarrier", TrackingNo: "X1"})
	assert.ErrorIs(t, err, ErrUnknownCarrier)
}

func TestClient_Track_UnknownState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message": "ok", "state": "99", "status": "200", "com": "yunda", "nu": "YD1", "data": []}`)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	result, err := client.Track(context.Background(), TrackRequest{
		CarrierCode: "yunda",
		TrackingNo:  "YD1",
	})
	require.NoError(t, err)
	assert.Equal(t, "unknown", result.State)
}

func TestStateNames_FullTable(t *testing.T) {
	want := map[string]string{
		"0": "awaiting_pickup",
		"1": "in_transit",
		"2": "out_for_delivery",
		"3": "delivered",
		"4": "refused",
		"5": "problem_shipment",
		"6": "return_in_transit",
		"7": "returned",
	}
	for state, name := range want {
		assert.Equal(t, name, stateNames[state], "state %s", state)
	}
	assert.Len(t, stateNames, len(want))
}

func TestIsSupportedCarrier(t *testing.T) {
	assert.True(t, IsSupportedCarrier("shunfeng"))
	assert.True(t, IsSupportedCarrier("ems"))
	assert.False(t, IsSupportedCarrier("fedex"))
	assert.False(t, IsSupportedCarrier(""))
}
