package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomer_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Customer
	}{
		{"id", `{"id":"c1","name":"Ann"}`, Customer{ID: "c1", Name: "Ann"}},
		{"document id", `{"_id":"64f0","username":"ann"}`, Customer{ID: "64f0", Username: "ann"}},
		{"id wins", `{"id":"c1","_id":"64f0"}`, Customer{ID: "c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Customer
			require.NoError(t, json.Unmarshal([]byte(tt.data), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCustomer_Label(t *testing.T) {
	assert.Equal(t, "Ann", Customer{Name: "Ann", Username: "ann"}.Label())
	assert.Equal(t, "ann", Customer{Username: "ann"}.Label())
	assert.Equal(t, "Unnamed Customer", Customer{ID: "c1"}.Label())
}

func TestUser_UnmarshalJSON(t *testing.T) {
	var users []User
	data := `[{"_id":"u1","username":"ann","isAdmin":true},{"id":"u2","username":"bob"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.True(t, users[0].IsAdmin)
	assert.Equal(t, "u2", users[1].ID)
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("refunded")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestTabPayload_AbsentProducts(t *testing.T) {
	var absent TabPayload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.Nil(t, absent.Products)

	var empty TabPayload
	require.NoError(t, json.Unmarshal([]byte(`{"products":[]}`), &empty))
	assert.NotNil(t, empty.Products)
	assert.Empty(t, empty.Products)
}

func TestProduct_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Product
	}{
		{
			"catalog document",
			`{"_id":"64f0","productName":"Cola","productImage":"aGk=","productPrice":2.5}`,
			Product{ID: "64f0", Name: "Cola", Image: "aGk=", Price: 2.5},
		},
		{
			"short shape with numeric id and string price",
			`{"id":7,"itemName":"Chips","price":"3.25"}`,
			Product{ID: "7", Name: "Chips", Price: 3.25},
		},
		{"plain name", `{"id":"p1","name":"Tea","price":1,"barcode":"123"}`, Product{ID: "p1", Name: "Tea", Price: 1, Barcode: "123"}},
		{"string product price", `{"_id":"p2","productName":"Beer","productPrice":" 4.50 "}`, Product{ID: "p2", Name: "Beer", Price: 4.5}},
		{"empty price", `{"_id":"p3","productName":"Free","productPrice":""}`, Product{ID: "p3", Name: "Free"}},
		{"product name wins", `{"_id":"p4","productName":"Cola","name":"cola-can"}`, Product{ID: "p4", Name: "Cola"}},
		{"description", `{"_id":"p5","productDescription":"Cold"}`, Product{ID: "p5", Description: "Cold"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Product
			require.NoError(t, json.Unmarshal([]byte(tt.data), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProduct_UnmarshalJSON_Invalid(t *testing.T) {
	for _, data := range []string{
		`{"_id":"p1","productPrice":"two"}`,
		`{"_id":true}`,
		`{"_id":"p1","price":[1]}`,
	} {
		var p Product
		assert.Error(t, json.Unmarshal([]byte(data), &p), data)
	}
}

func TestProduct_MarshalsCatalogShape(t *testing.T) {
	p := Product{ID: "64f0", Name: "Cola", Price: 2.5}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"64f0","productName":"Cola","productPrice":2.5}`, string(data))

	var back Product
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

func TestNewProduct_Keys(t *testing.T) {
	data, err := json.Marshal(NewProduct{Name: "Cola", Description: "Cold", Price: 2.5, Image: "aGk="})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productName":"Cola","productDescription":"Cold","productPrice":2.5,"productImage":"aGk="}`, string(data))
}
