package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codecommit"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"cicd-notifier/internal/services"
)

// ProvideAWSConfig loads the default AWS configuration bound to the given
// region.
func ProvideAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

func ProvideCodeCommit(config aws.Config) *codecommit.Client {
	return codecommit.NewFromConfig(config)
}

func ProvideStepFunctions(config aws.Config) *sfn.Client {
	return sfn.NewFromConfig(config)
}

func ProvideSSM(config aws.Config) *ssm.Client {
	return ssm.NewFromConfig(config)
}

// ProvideParameterStore returns the SSM-backed store, or the environment
// fallback when SSM is disabled for local runs.
func ProvideParameterStore(config aws.Config, env string, disableSSM DisableSSM) services.ParameterStore {
	if disableSSM {
		return services.NewEnvParameterStore(env)
	}
	return services.NewSSMParameterStore(ProvideSSM(config), env)
}
