// Package bedrock provides an AWS Bedrock implementation of the llm.Client
// interface using the InvokeModel API.
//
// Requests are converted per model family (Anthropic Claude, Amazon Titan,
// Meta Llama). Bedrock's InvokeModel API carries no native tool channel, so
// tool declarations are rendered into the prompt and the resulting calls are
// recovered from the generated text by the toolcall package.
//
// Credentials and region resolution follow the standard AWS SDK chain;
// the region can be overridden through the "region" key in ClientConfig.Extra.
package bedrock
