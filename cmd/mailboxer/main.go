package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/hickar/mailboxer/internal/app/config"
	"github.com/hickar/mailboxer/internal/app/mailbox"
	"github.com/hickar/mailboxer/internal/pkg/logger"
)

var (
	configFilepath = flag.String("config", "./config.yaml", "Filepath to configuration file. Default is './config.yaml'")
	envFilepath    = flag.String("env-file", "./.env", "Filepath to environment variables file. Default is './.env'")
	clientLogin    = flag.String("client", "", "Login of the configured account to use. Defaults to the first one")
	operation      = flag.String("op", "folders", "Operation to run: folders, list, list-delivery, find, search-delivery, move, headers, raw-headers, exists, make")
	folder         = flag.String("folder", "INBOX", "Mailbox the operation applies to")
	targetFolder   = flag.String("target-folder", "", "Destination mailbox for 'move'")
	messageID      = flag.String("id", "", "Message identifier: a Message-ID token or a bare sequence number")
	headerName     = flag.String("header", "", "Header name for 'headers'/'raw-headers'; empty returns the whole collection")
	limit          = flag.Int("limit", 0, "Window size for listing operations. Zero selects the default")
	deliveryID     = flag.String("delivery-id", "", "Target id for 'search-delivery'")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configFilepath, *envFilepath)
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}

	slogger := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:       slog.Level(cfg.LogLevel),
		ReplaceAttr: logger.ReplaceAttr,
	})))

	clientCfg, err := selectClient(cfg, *clientLogin)
	if err != nil {
		slogger.Error("no usable account configuration", slog.Any("error", err))
		os.Exit(1)
	}

	registry := mailbox.NewRegistry(mailbox.NetDialer{}, slogger.With(slog.String("module", "mailbox")))
	defer registry.CloseAll()

	ctx := logger.WithAttrs(context.Background(),
		slog.String("op", *operation),
		slog.String("folder", *folder),
	)

	result, err := runOperation(registry.GetOrCreate(clientCfg))
	if err != nil {
		slogger.ErrorContext(ctx, "operation failed", slog.Any("error", err))
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slogger.ErrorContext(ctx, "failed to encode result", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func selectClient(cfg config.Config, login string) (config.ClientConfig, error) {
	if len(cfg.Clients) == 0 {
		return config.ClientConfig{}, fmt.Errorf("configuration defines no clients")
	}
	if login == "" {
		return cfg.Clients[0], nil
	}
	for _, client := range cfg.Clients {
		if client.Login == login {
			return client, nil
		}
	}
	return config.ClientConfig{}, fmt.Errorf("no configured client with login %q", login)
}

func runOperation(client *mailbox.Client) (any, error) {
	switch *operation {
	case "folders":
		return client.ListFolders()

	case "list":
		return client.ListMessages(*folder, *limit)

	case "list-delivery":
		return client.ListMessagesWithDeliveryID(*folder, *limit)

	case "find":
		return client.FindByMessageID(*folder, *messageID)

	case "search-delivery":
		return client.SearchByDeliveryID(*folder, *deliveryID)

	case "move":
		if *targetFolder == "" {
			return nil, fmt.Errorf("'move' requires -target-folder")
		}
		moved, err := client.Move(*folder, *targetFolder, parseIdentifier(*messageID))
		return map[string]bool{"moved": moved}, err

	case "headers":
		if *headerName == "" {
			return client.MessageHeaders(*folder, parseIdentifier(*messageID))
		}
		value, found, err := client.MessageHeader(*folder, parseIdentifier(*messageID), *headerName)
		return headerResult(value, found), err

	case "raw-headers":
		if *headerName == "" {
			raw, found, err := client.RawMessageHeaders(*folder, parseIdentifier(*messageID))
			return headerResult(raw, found), err
		}
		value, found, err := client.RawMessageHeader(*folder, parseIdentifier(*messageID), *headerName)
		return headerResult(value, found), err

	case "exists":
		return map[string]bool{"exists": client.FolderExists(*folder)}, nil

	case "make":
		return map[string]bool{"created": client.EnsureFolder(*folder)}, nil

	default:
		return nil, fmt.Errorf("unknown operation %q", *operation)
	}
}

// parseIdentifier treats an all-digit id as a sequence number and anything
// else as a Message-ID token.
func parseIdentifier(id string) mailbox.MessageIdentifier {
	if n, err := strconv.ParseUint(id, 10, 32); err == nil && n > 0 {
		return mailbox.BySeqNum(uint32(n))
	}
	return mailbox.ByMessageID(id)
}

func headerResult(value string, found bool) any {
	if !found {
		return nil
	}
	return value
}
