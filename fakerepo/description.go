// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package fakerepo

// description is the WADL document the repository serves.  Like some
// real server versions, the dissemination method resources are
// described without their /objects prefix.
const description = `<?xml version="1.0" encoding="UTF-8"?>
<application xmlns="http://research.sun.com/wadl/2006/10"
    xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <resources base="http://localhost:8080/fedora/">
    <resource path="/objects">
      <method id="searchObjects" name="GET">
        <request>
          <param name="terms" style="query" type="xs:string"/>
          <param name="query" style="query" type="xs:string"/>
          <param name="maxResults" style="query" type="xs:int" default="25"/>
          <param name="resultFormat" style="query" type="xs:string" default="html"/>
          <param name="sessionToken" style="query" type="xs:string"/>
        </request>
        <response>
          <representation mediaType="text/html"/>
          <representation mediaType="text/xml"/>
        </response>
      </method>
      <resource path="/nextPID">
        <method id="getNextPID" name="POST">
          <request>
            <param name="numPIDs" style="query" type="xs:int" default="1"/>
            <param name="namespace" style="query" type="xs:string"/>
            <param name="format" style="query" type="xs:string" default="html"/>
          </request>
          <response>
            <representation mediaType="text/xml"/>
          </response>
        </method>
      </resource>
      <resource path="/{pid}">
        <param name="pid" style="template" type="xs:string"/>
        <method id="getObjectProfile" name="GET">
          <request>
            <param name="format" style="query" type="xs:string" default="html"/>
            <param name="asOfDateTime" style="query" type="xs:string"/>
          </request>
        </method>
        <method id="createObject" name="POST">
          <request>
            <param name="label" style="query" type="xs:string"/>
            <param name="format" style="query" type="xs:string"/>
            <param name="encoding" style="query" type="xs:string"/>
            <param name="namespace" style="query" type="xs:string"/>
            <param name="ownerId" style="query" type="xs:string"/>
            <param name="logMessage" style="query" type="xs:string"/>
            <param name="ignoreMime" style="query" type="xs:boolean"/>
            <param name="state" style="query" type="xs:string"/>
            <representation mediaType="text/xml"/>
          </request>
        </method>
        <method id="updateObject" name="PUT">
          <request>
            <param name="label" style="query" type="xs:string"/>
            <param name="ownerId" style="query" type="xs:string"/>
            <param name="state" style="query" type="xs:string"/>
            <param name="logMessage" style="query" type="xs:string"/>
            <param name="lastModifiedDate" style="query" type="xs:string"/>
          </request>
        </method>
        <method id="deleteObject" name="DELETE">
          <request>
            <param name="logMessage" style="query" type="xs:string"/>
          </request>
        </method>
        <resource path="/datastreams">
          <method id="listDatastreams" name="GET">
            <request>
              <param name="format" style="query" type="xs:string" default="html"/>
              <param name="asOfDateTime" style="query" type="xs:string"/>
            </request>
          </method>
          <resource path="/{dsID}">
            <param name="dsID" style="template" type="xs:string"/>
            <method id="getDatastreamProfile" name="GET">
              <request>
                <param name="format" style="query" type="xs:string" default="html"/>
                <param name="asOfDateTime" style="query" type="xs:string"/>
                <param name="validateChecksum" style="query" type="xs:boolean"/>
              </request>
            </method>
            <method id="addDatastream" name="POST">
              <request>
                <param name="controlGroup" style="query" type="xs:string"/>
                <param name="dsLocation" style="query" type="xs:string"/>
                <param name="altIDs" style="query" type="xs:string"/>
                <param name="dsLabel" style="query" type="xs:string"/>
                <param name="versionable" style="query" type="xs:boolean"/>
                <param name="dsState" style="query" type="xs:string"/>
                <param name="formatURI" style="query" type="xs:string"/>
                <param name="checksumType" style="query" type="xs:string"/>
                <param name="checksum" style="query" type="xs:string"/>
                <param name="mimeType" style="query" type="xs:string"/>
                <param name="logMessage" style="query" type="xs:string"/>
              </request>
            </method>
            <method id="modifyDatastream" name="PUT">
              <request>
                <param name="dsLocation" style="query" type="xs:string"/>
                <param name="altIDs" style="query" type="xs:string"/>
                <param name="dsLabel" style="query" type="xs:string"/>
                <param name="versionable" style="query" type="xs:boolean"/>
                <param name="dsState" style="query" type="xs:string"/>
                <param name="formatURI" style="query" type="xs:string"/>
                <param name="checksumType" style="query" type="xs:string"/>
                <param name="checksum" style="query" type="xs:string"/>
                <param name="mimeType" style="query" type="xs:string"/>
                <param name="logMessage" style="query" type="xs:string"/>
                <param name="ignoreContent" style="query" type="xs:boolean"/>
                <param name="lastModifiedDate" style="query" type="xs:string"/>
              </request>
            </method>
            <method id="deleteDatastream" name="DELETE">
              <request>
                <param name="startDT" style="query" type="xs:string"/>
                <param name="endDT" style="query" type="xs:string"/>
                <param name="logMessage" style="query" type="xs:string"/>
              </request>
            </method>
            <resource path="/content">
              <method id="getDatastream" name="GET">
                <request>
                  <param name="asOfDateTime" style="query" type="xs:string"/>
                  <param name="download" style="query" type="xs:boolean"/>
                </request>
              </method>
            </resource>
          </resource>
        </resource>
      </resource>
    </resource>
    <resource path="/">
      <resource path="{pid}/methods">
        <param name="pid" style="template" type="xs:string"/>
        <method id="getAllObjectMethods" name="GET">
          <request>
            <param name="format" style="query" type="xs:string" default="html"/>
            <param name="asOfDateTime" style="query" type="xs:string"/>
          </request>
        </method>
        <resource path="/{sDef}/{method}">
          <param name="sDef" style="template" type="xs:string"/>
          <param name="method" style="template" type="xs:string"/>
          <method id="invokeSDefMethodUsingGET" name="GET">
            <request>
              <param name="asOfDateTime" style="query" type="xs:string"/>
            </request>
          </method>
        </resource>
      </resource>
    </resource>
  </resources>
</application>
`
