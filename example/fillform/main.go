package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/google/uuid"

	"github.com/tbxark/fillform"
	"github.com/tbxark/fillform/conversation"
	"github.com/tbxark/fillform/session"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	flag.Parse()
	config, err := loadConfig(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := startApp(context.Background(), config); err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, config *Config) error {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.APIKey,
		Model:   config.Model,
		BaseURL: config.BaseURL,
	})
	if err != nil {
		return err
	}

	step, err := fillform.NewStep(
		fillform.DefaultConfig(),
		chatModel,
		fillform.WithEngineStates(session.NewFileCache[conversation.EngineState](config.StateDir)),
		fillform.WithStepStates(session.NewFileCache[fillform.StepState](config.StateDir)),
	)
	if err != nil {
		return err
	}

	sess := session.Session{ConversationID: uuid.NewString()}
	fields := sampleFormFields()

	fmt.Printf("Form received: %s (%d fields). Describe your details or paste document text prefixed with 'doc:'.\n", sampleFormTitle, len(fields))
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("user: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("input closed, exiting")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		req := &fillform.Request{
			Session:      sess,
			FormFilename: sampleFormFilename,
			FormTitle:    sampleFormTitle,
			Fields:       fields,
			UserMessage:  input,
		}
		if doc, ok := strings.CutPrefix(input, "doc:"); ok {
			req.UserMessage = ""
			req.Attachments = []fillform.Attachment{
				{Filename: "pasted_document.txt", Content: strings.TrimSpace(doc)},
			}
		}

		resp, err := step.Execute(ctx, req)
		if err != nil {
			return err
		}

		switch resp.Status {
		case fillform.StatusComplete:
			fmt.Println("form complete:")
			fmt.Println(resp.Markdown)
			return nil
		case fillform.StatusError:
			fmt.Printf("error: %s\n", resp.Message)
		default:
			fmt.Printf("assistant: %s\n", resp.Message)
		}
	}
}
