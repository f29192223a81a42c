// Package services contains the console's resource services: SIP accounts,
// contacts, call history and users. Every call goes through a client.Doer,
// so the current credential and error mapping are applied uniformly.
package services
