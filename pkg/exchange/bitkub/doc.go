// Package bitkub implements a client for the Bitkub REST API.
//
// The package includes:
//   - Protocol: request building, record signing and response parsing
//   - Normalizer: conversion of Bitkub payloads to core types and tables
//   - Exchange: the client bound to one credential pair and one trading pair
//
// Signed calls fetch the server time, add it to the record as ts, sign the
// canonical JSON of the record with HMAC-SHA256 and send the record plus sig
// as the POST body, with the API key in the X-BTK-APIKEY header.
//
// Example usage:
//
//	config := core.DefaultConfig().
//	    WithCredentials(&core.Credentials{APIKey: key, SecretKey: secret}).
//	    WithSymbol("THB_XLM")
//	ex, err := bitkub.New(config)
//	if err != nil {
//	    return err
//	}
//	defer ex.Close()
//	wallet, err := ex.Wallet(ctx)
package bitkub
