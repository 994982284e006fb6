package proxmox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ProxmoxClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewProxmoxClient(server.URL, "orchestrator@pve!deploy", "token-secret")
	require.NoError(t, err)
	return client
}

func writeData(w http.ResponseWriter, data interface{}) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestTokenHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeData(w, map[string]string{"version": "8.2"})
	})

	_, err := client.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PVEAPIToken=orchestrator@pve!deploy=token-secret", gotAuth)
}

func TestGetNodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes", r.URL.Path)
		writeData(w, []map[string]interface{}{
			{"node": "pve1", "status": "online"},
			{"node": "pve2", "status": "online"},
		})
	})

	nodes, err := client.GetNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pve1", "pve2"}, nodes)
}

func TestGetNextFreeVMID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/cluster/nextid", r.URL.Path)
		// The API hands the id back as a string.
		writeData(w, "105")
	})

	id, err := client.GetNextFreeVMID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(105), id)
}

func TestGetNextFreeVMIDGarbage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, "not-a-number")
	})

	_, err := client.GetNextFreeVMID(context.Background())
	require.Error(t, err)
}

func TestCloneVMFullClone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/9000/clone", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "105", r.PostForm.Get("newid"))
		assert.Equal(t, "class-a-bob-105", r.PostForm.Get("name"))
		assert.Equal(t, "1", r.PostForm.Get("full"))
		assert.Equal(t, "local-lvm", r.PostForm.Get("storage"))
		assert.Empty(t, r.PostForm.Get("snapname"))
		writeData(w, "UPID:pve1:clone")
	})

	upid, err := client.CloneVM(context.Background(), "pve1", 9000, 105, "class-a-bob-105", "local-lvm", false)
	require.NoError(t, err)
	assert.Equal(t, "UPID:pve1:clone", upid)
}

func TestCloneVMLinkedClone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "__base__", r.PostForm.Get("snapname"))
		assert.Empty(t, r.PostForm.Get("full"))
		assert.Empty(t, r.PostForm.Get("storage"))
		writeData(w, "UPID:pve1:clone")
	})

	_, err := client.CloneVM(context.Background(), "pve1", 9000, 105, "vm-105", "", true)
	require.NoError(t, err)
}

func TestApplyPerformanceDefaults(t *testing.T) {
	var putForm map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeData(w, map[string]interface{}{"cpu": "qemu64", "memory": "2048"})
		case http.MethodPut:
			require.NoError(t, r.ParseForm())
			putForm = r.PostForm
			writeData(w, nil)
		}
	})

	require.NoError(t, client.ApplyPerformanceDefaults(context.Background(), "pve1", 105))
	assert.Equal(t, "enabled=1", putForm["agent"][0])
	assert.Equal(t, "host", putForm["cpu"][0])
	assert.Equal(t, "0", putForm["balloon"][0])
}

func TestApplyPerformanceDefaultsAlreadyTuned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// No PUT expected: the config already carries every tunable.
		require.Equal(t, http.MethodGet, r.Method)
		writeData(w, map[string]interface{}{
			"agent":   "enabled=1",
			"cpu":     "host",
			"balloon": float64(0),
		})
	})

	require.NoError(t, client.ApplyPerformanceDefaults(context.Background(), "pve1", 105))
}

func TestDeleteVMPurge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/105", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("purge"))
		assert.Equal(t, "1", r.URL.Query().Get("destroy-unreferenced-disks"))
		writeData(w, "UPID:pve1:destroy")
	})

	upid, err := client.DeleteVM(context.Background(), "pve1", 105, true)
	require.NoError(t, err)
	assert.Equal(t, "UPID:pve1:destroy", upid)
}

func TestWaitForTaskPollsUntilStopped(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			writeData(w, map[string]interface{}{"status": "running"})
			return
		}
		writeData(w, map[string]interface{}{"status": "stopped", "exitstatus": "OK"})
	})

	require.NoError(t, client.WaitForTask(context.Background(), "pve1", "UPID:pve1:clone"))
	assert.Equal(t, 2, calls)
}

func TestWaitForTaskFailedExit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]interface{}{
			"status":     "stopped",
			"exitstatus": "clone failed: no space left",
		})
	})

	err := client.WaitForTask(context.Background(), "pve1", "UPID:pve1:clone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left")
}

func TestWaitForTaskContextDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]interface{}{"status": "running"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.WaitForTask(ctx, "pve1", "UPID:pve1:clone")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForTaskEmptyUPID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty upid")
	})
	require.NoError(t, client.WaitForTask(context.Background(), "pve1", ""))
}

func TestErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data":   nil,
			"errors": map[string]string{"newid": "VM 105 already exists"},
		})
	})

	_, err := client.CloneVM(context.Background(), "pve1", 9000, 105, "vm-105", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Contains(t, err.Error(), "400")
}

func TestConsoleURL(t *testing.T) {
	client, err := NewProxmoxClient("https://pve.lab.local:8006", "user@pve!t", "s")
	require.NoError(t, err)
	assert.Equal(t,
		"https://pve.lab.local:8006/?console=kvm&novnc=1&vmid=105&node=pve1",
		client.ConsoleURL("pve1", 105))
}

func TestVNCProxyRequestsWebsocket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/qemu/105/vncproxy", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1", r.PostForm.Get("websocket"))
		writeData(w, map[string]interface{}{"ticket": "VNC-TICKET", "port": "5900"})
	})

	proxy, err := client.VNCProxy(context.Background(), "pve1", 105)
	require.NoError(t, err)
	assert.Equal(t, "VNC-TICKET", proxy["ticket"])
}
