// Command walkthrough drives a running server through the first-job flow:
// a new worker registers, accepts the first job, shares location and reports
// arrival.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

var defaultClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func main() {
	base := flag.String("addr", "http://localhost:8080", "server base URL")
	phone := flag.String("phone", "9876543210", "worker phone")
	name := flag.String("name", "शिव कुमार", "worker name")
	flag.Parse()

	ctx := context.Background()
	c := &client{base: *base, http: defaultClient}

	if err := walk(ctx, c, *phone, *name); err != nil {
		log.Fatal(err)
	}
}

func walk(ctx context.Context, c *client, phone, name string) error {
	steps := []struct {
		path string
		body any
	}{
		{"/v1/onboarding/phone", map[string]string{"phone": phone}},
		{"/v1/onboarding/role", map[string]string{"role": "worker"}},
		{"/v1/onboarding/name", map[string]string{"name": name}},
	}
	for _, s := range steps {
		var v struct {
			Screen string `json:"screen"`
			Token  string `json:"token"`
		}
		if err := c.do(ctx, http.MethodPost, s.path, s.body, &v); err != nil {
			return err
		}
		fmt.Printf("%-24s -> %s\n", s.path, v.Screen)
		if v.Token != "" {
			c.token = v.Token
			// a known phone skips the remaining steps
			if v.Screen == "app" {
				break
			}
		}
	}
	if c.token == "" {
		return fmt.Errorf("onboarding did not reach the app")
	}

	var jobs struct {
		Jobs []struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
			Pay  string `json:"pay"`
		} `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/available", nil, &jobs); err != nil {
		return err
	}
	if len(jobs.Jobs) == 0 {
		return fmt.Errorf("no jobs available")
	}
	job := jobs.Jobs[0]
	fmt.Printf("accepting job %d: %s %s\n", job.ID, job.Role, job.Pay)
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/jobs/%d/accept", job.ID), nil, nil); err != nil {
		return err
	}

	var snap struct {
		Phase  string `json:"phase"`
		Window string `json:"window"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/tracking/share", nil, &snap); err != nil {
		return err
	}
	fmt.Printf("tracking: %s (%s left to cancel)\n", snap.Phase, snap.Window)
	if err := c.do(ctx, http.MethodPost, "/v1/device/location", map[string]float64{"lat": 28.6139, "lng": 77.209}, nil); err != nil {
		return err
	}

	var arrival struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/tracking/reached", nil, &arrival); err != nil {
		return err
	}
	fmt.Println(arrival.Message)
	return nil
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(b))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
