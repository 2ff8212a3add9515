package api

// hostKind selects which configured host serves an endpoint.
type hostKind int

const (
	primaryHost hostKind = iota
	customHost
)

// Endpoint names on the chat API.
const (
	EndpointLogin           = "login"
	EndpointRegister        = "register"
	EndpointChatDocuments   = "chat_with_documents"
	EndpointChatCustomModel = "chat_with_custom_model"
	EndpointChatMyLLM       = "chat_with_my_llm"
)

// routes is the explicit endpoint-to-host table. The two model
// endpoints live on the custom host; endpoints absent from the table
// use the primary host.
var routes = map[string]hostKind{
	EndpointLogin:           primaryHost,
	EndpointRegister:        primaryHost,
	EndpointChatDocuments:   primaryHost,
	EndpointChatCustomModel: customHost,
	EndpointChatMyLLM:       customHost,
}

func (c *Client) hostFor(endpoint string) string {
	if routes[endpoint] == customHost {
		return c.customHost
	}
	return c.host
}
