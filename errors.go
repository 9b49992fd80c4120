/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Validation failures reported to the offending connection as error events.
// The messages are part of the wire protocol.
var (
	errRoomNotFound   = errors.New("Room not found")
	errGameInProgress = errors.New("Game already in progress")
	errNameTaken      = errors.New("Player name already taken")
	errInvalidState   = errors.New("Invalid game state")
	errNotYourTurn    = errors.New("Not your turn")
	errNotAdminStart  = errors.New("Only admin can start the game")
	errNotAdminEnd    = errors.New("Only admin can end the game")
	errEmptyRoom      = errors.New("Cannot start a game with no players")
	errCreateRoom     = errors.New("Failed to create room")
	errInternal       = errors.New("Internal server error")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
