package server

import (
	"net/http"
	"testing"
)

func TestListClients(t *testing.T) {
	h := setupTestServer(t)
	w := doRequest(t, h, http.MethodGet, "/clients", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	clients := decodeBody(t, w)["clients"].([]any)
	if len(clients) != 5 {
		t.Fatalf("expected 5 seeded clients got %d", len(clients))
	}
	first := clients[0].(map[string]any)
	if first["id"].(float64) != 1 || first["name"] != "Acme Corporation" {
		t.Fatalf("unexpected first client: %#v", first)
	}
	if first["company_registration_no"] != "REG-2024-ACME-001" {
		t.Fatalf("unexpected registration no: %v", first["company_registration_no"])
	}
}

func TestGetClient(t *testing.T) {
	h := setupTestServer(t)
	w := doRequest(t, h, http.MethodGet, "/clients/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["name"] != "TechStart Inc." {
		t.Fatalf("unexpected client: %#v", body)
	}

	if w := doRequest(t, h, http.MethodGet, "/clients/999", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestListProducts(t *testing.T) {
	h := setupTestServer(t)
	w := doRequest(t, h, http.MethodGet, "/products", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	products := decodeBody(t, w)["products"].([]any)
	if len(products) != 8 {
		t.Fatalf("expected 8 seeded products got %d", len(products))
	}
	first := products[0].(map[string]any)
	if first["name"] != "Web Development Service" || first["price"].(float64) != 1500.0 {
		t.Fatalf("unexpected first product: %#v", first)
	}
}

func TestGetProduct(t *testing.T) {
	h := setupTestServer(t)
	w := doRequest(t, h, http.MethodGet, "/products/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["name"] != "Logo Design" || body["price"].(float64) != 500.0 {
		t.Fatalf("unexpected product: %#v", body)
	}

	if w := doRequest(t, h, http.MethodGet, "/products/999", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
