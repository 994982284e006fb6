package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type ProxmoxClient struct {
	baseUrl    *url.URL
	httpClient *http.Client
	Token      string // API token auth (format: PVEAPIToken=userId=userToken)
	// Ticket auth (optional): when Ticket and CSRFToken are set, Cookie + CSRF
	// is preferred over the API token. Required for VNC websocket access.
	Ticket    string
	CSRFToken string
}

func NewProxmoxClient(apiURL string, userId, userToken string) (*ProxmoxClient, error) {
	baseUrl, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	return &ProxmoxClient{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		Token: fmt.Sprintf("PVEAPIToken=%s=%s", userId, userToken),
	}, nil
}

func NewProxmoxClientWithTicket(apiURL string, ticket, csrfToken string) (*ProxmoxClient, error) {
	baseUrl, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	return &ProxmoxClient{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		Ticket:    ticket,
		CSRFToken: csrfToken,
	}, nil
}

func (c *ProxmoxClient) Request(ctx context.Context, req *http.Request, result interface{}) error {
	if c.Ticket != "" && c.CSRFToken != "" {
		req.Header.Set("CSRFPreventionToken", c.CSRFToken)
		req.AddCookie(&http.Cookie{
			Name:  "PVEAuthCookie",
			Value: c.Ticket,
		})
	} else {
		req.Header.Set("Authorization", c.Token)
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Data   interface{}            `json:"data"`
			Errors map[string]interface{} `json:"errors,omitempty"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			if len(errResp.Errors) > 0 {
				return fmt.Errorf("proxmox API error (status %d): %v", resp.StatusCode, errResp.Errors)
			}
		}
		var rawResp map[string]interface{}
		if json.Unmarshal(body, &rawResp) == nil {
			if msg, ok := rawResp["message"].(string); ok {
				return fmt.Errorf("proxmox API error (status %d): %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("proxmox API error (status %d): %s", resp.StatusCode, string(body))
	}

	if result != nil {
		var apiResp struct {
			Data interface{} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return err
		}
		if apiResp.Data != nil {
			data, _ := json.Marshal(apiResp.Data)
			return json.Unmarshal(data, result)
		}
	}
	return nil
}

func (c *ProxmoxClient) Get(ctx context.Context, path string, result interface{}) error {
	endpoint := c.baseUrl.JoinPath("/api2/json", path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.Request(ctx, req, result)
}

// PostForm sends an application/x-www-form-urlencoded request, the encoding
// the Proxmox API expects for mutating calls.
func (c *ProxmoxClient) PostForm(ctx context.Context, path string, form url.Values, result interface{}) error {
	endpoint := c.baseUrl.JoinPath("/api2/json", path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Request(ctx, req, result)
}

func (c *ProxmoxClient) PutForm(ctx context.Context, path string, form url.Values, result interface{}) error {
	endpoint := c.baseUrl.JoinPath("/api2/json", path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Request(ctx, req, result)
}

func (c *ProxmoxClient) Delete(ctx context.Context, path string, result interface{}) error {
	endpoint := c.baseUrl.JoinPath("/api2/json", path).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	return c.Request(ctx, req, result)
}

// GetVersion verifies connectivity.
// GET /api2/json/version
func (c *ProxmoxClient) GetVersion(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.Get(ctx, "/version", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetNodes returns the names of the cluster's nodes.
// GET /api2/json/nodes
func (c *ProxmoxClient) GetNodes(ctx context.Context) ([]string, error) {
	var result []map[string]interface{}
	if err := c.Get(ctx, "/nodes", &result); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(result))
	for _, n := range result {
		if name, ok := n["node"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetNextFreeVMID asks the cluster for the next unused VMID.
// GET /api2/json/cluster/nextid
func (c *ProxmoxClient) GetNextFreeVMID(ctx context.Context) (uint32, error) {
	var result string
	if err := c.Get(ctx, "/cluster/nextid", &result); err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(result, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unexpected nextid %q: %w", result, err)
	}
	return uint32(id), nil
}

// CloneVM clones a template VM into a new VMID.
// Linked clones reference the template's __base__ snapshot and inherit its
// storage unless one is passed explicitly; full clones copy disks onto the
// given storage.
// POST /api2/json/nodes/{node}/qemu/{templateID}/clone
func (c *ProxmoxClient) CloneVM(ctx context.Context, nodeName string, templateID, newID uint32, name, storage string, linked bool) (string, error) {
	form := url.Values{}
	form.Set("newid", strconv.FormatUint(uint64(newID), 10))
	form.Set("name", name)
	if linked {
		form.Set("snapname", "__base__")
	} else {
		form.Set("full", "1")
	}
	if storage != "" {
		form.Set("storage", storage)
	}

	var upid string
	path := fmt.Sprintf("/nodes/%s/qemu/%d/clone", nodeName, templateID)
	if err := c.PostForm(ctx, path, form, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// ApplyPerformanceDefaults sets a fixed set of tunables on a VM: guest agent
// on, host CPU passthrough, memory balloon off. A field already present in the
// live config is never overwritten, so the call is idempotent and preserves
// operator-set values.
func (c *ProxmoxClient) ApplyPerformanceDefaults(ctx context.Context, nodeName string, vmID uint32) error {
	config, err := c.GetVMConfig(ctx, nodeName, vmID)
	if err != nil {
		return err
	}

	form := url.Values{}
	if _, ok := config["agent"]; !ok {
		form.Set("agent", "enabled=1")
	}
	if cpu, ok := config["cpu"]; !ok || cpu == "qemu64" {
		form.Set("cpu", "host")
	}
	if _, ok := config["balloon"]; !ok {
		form.Set("balloon", "0")
	}
	if len(form) == 0 {
		return nil
	}

	path := fmt.Sprintf("/nodes/%s/qemu/%d/config", nodeName, vmID)
	return c.PutForm(ctx, path, form, nil)
}

func (c *ProxmoxClient) StartVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatusCommand(ctx, nodeName, vmID, "start")
}

func (c *ProxmoxClient) StopVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatusCommand(ctx, nodeName, vmID, "stop")
}

func (c *ProxmoxClient) ResetVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatusCommand(ctx, nodeName, vmID, "reset")
}

func (c *ProxmoxClient) SuspendVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatusCommand(ctx, nodeName, vmID, "suspend")
}

func (c *ProxmoxClient) ResumeVM(ctx context.Context, nodeName string, vmID uint32) (string, error) {
	return c.vmStatusCommand(ctx, nodeName, vmID, "resume")
}

// POST /api2/json/nodes/{node}/qemu/{vmid}/status/{command}
func (c *ProxmoxClient) vmStatusCommand(ctx context.Context, nodeName string, vmID uint32, command string) (string, error) {
	var upid string
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/%s", nodeName, vmID, command)
	if err := c.PostForm(ctx, path, url.Values{}, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// DeleteVM destroys a VM and its disks.
// DELETE /api2/json/nodes/{node}/qemu/{vmid}
func (c *ProxmoxClient) DeleteVM(ctx context.Context, nodeName string, vmID uint32, purge bool) (string, error) {
	path := fmt.Sprintf("/nodes/%s/qemu/%d", nodeName, vmID)
	if purge {
		path += "?purge=1&destroy-unreferenced-disks=1"
	}
	var upid string
	if err := c.Delete(ctx, path, &upid); err != nil {
		return "", err
	}
	return upid, nil
}

// GetVMStatus returns the live status of a VM.
// GET /api2/json/nodes/{node}/qemu/{vmid}/status/current
func (c *ProxmoxClient) GetVMStatus(ctx context.Context, nodeName string, vmID uint32) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/current", nodeName, vmID)
	if err := c.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetVMConfig returns the live VM configuration.
// GET /api2/json/nodes/{node}/qemu/{vmid}/config
func (c *ProxmoxClient) GetVMConfig(ctx context.Context, nodeName string, vmID uint32) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/config", nodeName, vmID)
	if err := c.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTaskStatus reads the status of an asynchronous node task.
// GET /api2/json/nodes/{node}/tasks/{upid}/status
func (c *ProxmoxClient) GetTaskStatus(ctx context.Context, nodeName, upid string) (map[string]interface{}, error) {
	var result map[string]interface{}
	path := fmt.Sprintf("/nodes/%s/tasks/%s/status", nodeName, url.PathEscape(upid))
	if err := c.Get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// WaitForTask polls a task until it leaves the running state. The caller
// bounds the wait through ctx. A task that stopped with an exitstatus other
// than OK is an error.
func (c *ProxmoxClient) WaitForTask(ctx context.Context, nodeName, upid string) error {
	if upid == "" {
		return nil
	}
	for {
		status, err := c.GetTaskStatus(ctx, nodeName, upid)
		if err != nil {
			return err
		}
		if s, _ := status["status"].(string); s != "running" {
			if exit, _ := status["exitstatus"].(string); exit != "" && exit != "OK" {
				return fmt.Errorf("task %s failed: %s", upid, exit)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for task %s: %w", upid, ctx.Err())
		case <-time.After(time.Second):
		}
	}
}

// VNCProxy allocates a VNC ticket and port for a VM console.
// POST /api2/json/nodes/{node}/qemu/{vmid}/vncproxy
func (c *ProxmoxClient) VNCProxy(ctx context.Context, nodeName string, vmID uint32) (map[string]interface{}, error) {
	form := url.Values{}
	form.Set("websocket", "1")
	var result map[string]interface{}
	path := fmt.Sprintf("/nodes/%s/qemu/%d/vncproxy", nodeName, vmID)
	if err := c.PostForm(ctx, path, form, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// WebSocket dials the Proxmox websocket endpoint at the given API path using
// the client's ticket auth.
func (c *ProxmoxClient) WebSocket(path string, params map[string]string) (*websocket.Conn, error) {
	wsURL := *c.baseUrl
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/api2/json" + path
	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}
	wsURL.RawQuery = query.Encode()

	dialer := websocket.Dialer{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	header := http.Header{}
	if c.Ticket != "" {
		header.Set("Cookie", "PVEAuthCookie="+c.Ticket)
	} else {
		header.Set("Authorization", c.Token)
	}
	conn, resp, err := dialer.Dial(wsURL.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, err
	}
	return conn, nil
}

// ConsoleURL builds the noVNC console URL shown to students for isolated VMs.
func (c *ProxmoxClient) ConsoleURL(nodeName string, vmID uint32) string {
	return fmt.Sprintf("%s/?console=kvm&novnc=1&vmid=%d&node=%s", strings.TrimRight(c.baseUrl.String(), "/"), vmID, nodeName)
}
