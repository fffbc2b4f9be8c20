// Package groupcardv1 is the wire contract of the groupcard API: message
// types, procedure names and Connect handler/client constructors for
// GroupService, MerchantService and AuthService.
//
// Messages travel as JSON (Content-Type application/json, or
// application/connect+json for streaming framing), so any Connect or plain
// HTTP client can call the API:
//
//	curl -X POST http://localhost:8080/groupcard.v1.MerchantService/ProposePurchase \
//	  -H 'Content-Type: application/json' \
//	  -H 'Authorization: Bearer <token>' \
//	  -d '{"groupId":"...","totalCents":1800,"merchant":"Cafe","bypassConfirmations":true}'
package groupcardv1
