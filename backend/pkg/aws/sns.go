package aws

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient fans payment events out to subscribers of a topic.
type SNSClient struct {
	client snsAPI
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// IsTopicARN reports whether destination addresses an SNS topic.
func IsTopicARN(destination string) bool {
	return strings.HasPrefix(destination, "arn:aws:sns:")
}

// Publish sends payload to the topic ARN. FIFO topics group by key and
// deduplicate on the payload hash.
func (s *SNSClient) Publish(ctx context.Context, topicArn, key string, payload []byte) error {
	if !IsTopicARN(topicArn) {
		return fmt.Errorf("not an SNS topic ARN: %q", topicArn)
	}

	input := &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(string(payload)),
	}
	if strings.HasSuffix(topicArn, ".fifo") {
		group := key
		if group == "" {
			group = "default"
		}
		sum := sha256.Sum256(payload)
		input.MessageGroupId = sdkaws.String(group)
		input.MessageDeduplicationId = sdkaws.String(hex.EncodeToString(sum[:]))
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish to %s: %w", topicArn, err)
	}
	return nil
}
