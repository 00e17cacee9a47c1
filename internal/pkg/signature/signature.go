// Package signature implements the keyed MD5 signatures of the Robokassa
// redirect protocol.
package signature

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CustomParamPrefix marks parameters echoed back unmodified by the gateway.
const CustomParamPrefix = "Shp_"

// OrderIDParam carries the internal order id through the payment flow.
const OrderIDParam = CustomParamPrefix + "orderId"

// FormatAmount renders amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// SignCheckout computes SignatureValue for the outbound payment redirect:
// md5(login:amount:invoiceID:key1[:Shp_a=1:Shp_b=2]).
func SignCheckout(merchantLogin string, amount decimal.Decimal, invoiceID int64, key1 string, custom map[string]string) string {
	parts := []string{merchantLogin, FormatAmount(amount), strconv.FormatInt(invoiceID, 10), key1}
	return digest(parts, custom)
}

// SignResult computes the signature the gateway attaches to result
// notifications: md5(amount:invoiceID:key2[:custom]).
func SignResult(amount string, invoiceID int64, key2 string, custom map[string]string) string {
	return digest([]string{amount, strconv.FormatInt(invoiceID, 10), key2}, custom)
}

// SignState computes the signature of an OpStateExt query:
// md5(login:invoiceID:key2).
func SignState(merchantLogin string, invoiceID int64, key2 string) string {
	return digest([]string{merchantLogin, strconv.FormatInt(invoiceID, 10), key2}, nil)
}

// VerifyCallback recomputes md5(amount:invoiceID:key2[:Shp_...]) over amount
// exactly as the gateway sent it and compares it with received, ignoring case.
func VerifyCallback(amount string, invoiceID int64, received, key2 string, custom map[string]string) bool {
	received = strings.ToLower(strings.TrimSpace(received))
	if received == "" {
		return false
	}
	expected := SignResult(amount, invoiceID, key2, custom)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// VerifySuccess checks the signature of the browser success redirect,
// which the gateway signs with the first key.
func VerifySuccess(amount string, invoiceID int64, received, key1 string, custom map[string]string) bool {
	return VerifyCallback(amount, invoiceID, received, key1, custom)
}

// CustomParams picks every parameter carrying the custom prefix.
func CustomParams(params map[string]string) map[string]string {
	custom := make(map[string]string)
	for key, value := range params {
		if strings.HasPrefix(key, CustomParamPrefix) {
			custom[key] = value
		}
	}
	return custom
}

// CanonicalCustom serializes custom params as key1=value1:key2=value2 in
// ascending key order.
func CanonicalCustom(custom map[string]string) string {
	if len(custom) == 0 {
		return ""
	}
	keys := make([]string, 0, len(custom))
	for key := range custom {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+custom[key])
	}
	return strings.Join(pairs, ":")
}

func digest(parts []string, custom map[string]string) string {
	if tail := CanonicalCustom(custom); tail != "" {
		parts = append(parts, tail)
	}
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
