package testutil

import (
	"innbot/internal/registry/models"
)

// Identifiers used across tests.
const (
	TaxID10        = "7710137066"
	TaxID12        = "500100732259"
	RegistrationID = "1027700132195"
)

// Registry reply bodies covering the shapes the registry is known to return.
const (
	// FullPartyReply carries every optional block.
	FullPartyReply = `{"suggestions":[{"value":"ООО \"РОМАШКА\"","data":{
		"name":{"short_with_opf":"ООО \"Ромашка\"","full_with_opf":"ОБЩЕСТВО С ОГРАНИЧЕННОЙ ОТВЕТСТВЕННОСТЬЮ \"РОМАШКА\""},
		"inn":"7710137066","ogrn":"1027700132195","kpp":"771001001",
		"address":{"value":"г Москва, ул Тверская, д 1","data":{"metro":[
			{"name":"Охотный ряд","line":"Сокольническая","distance":0.3},
			{"name":"Тверская","line":"Замоскворецкая","distance":0.5},
			{"name":"Театральная","line":"Замоскворецкая","distance":0.6},
			{"name":"Пушкинская","line":"Таганско-Краснопресненская","distance":0.9}
		]}},
		"capital":{"value":10000,"type":"УСТАВНЫЙ КАПИТАЛ"},
		"management":{"name":"Иванов Иван Иванович","post":"ГЕНЕРАЛЬНЫЙ ДИРЕКТОР"},
		"okveds":[
			{"code":"46.90","name":"Торговля оптовая неспециализированная","main":false},
			{"code":"62.01","name":"Разработка компьютерного программного обеспечения","main":true}
		]
	}}]}`

	// MinimalPartyReply has only the five mandatory blocks.
	MinimalPartyReply = `{"suggestions":[{"data":{
		"name":{"short_with_opf":"ООО Ромашка"},
		"inn":"7710137066","ogrn":"1027700132195","kpp":"771001001",
		"address":{"value":"г. Москва"}
	}}]}`

	// NullPartyReply has every key present and null.
	NullPartyReply = `{"suggestions":[{"value":null,"data":{
		"name":null,"inn":null,"ogrn":null,"kpp":null,"address":null,
		"capital":null,"management":null,"okveds":null
	}}]}`

	// EmptyReply is the not-found answer.
	EmptyReply = `{"suggestions":[]}`
)

// MinimalPartyReport is the rendering of MinimalPartyReply.
const MinimalPartyReport = "🏢 *ООО Ромашка*\n" +
	"📋 *ИНН:* 7710137066\n" +
	"📄 *ОГРН:* 1027700132195\n" +
	"📍 *Адрес:* г. Москва\n" +
	"🔢 *КПП:* 771001001"

// MustDecode decodes a reply body and panics on invalid JSON.
func MustDecode(body string) *models.LookupResult {
	result, err := models.DecodeLookupResult([]byte(body))
	if err != nil {
		panic(err)
	}
	return result
}
