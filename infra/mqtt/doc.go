// Package mqtt wraps the Eclipse Paho client for publishing report data.
package mqtt
